package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/xddprog/auth-backend/internal/model"
	"github.com/xddprog/auth-backend/internal/service"
)

type lookupRepo struct {
	users []model.User
}

func (l *lookupRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	for i := range l.users {
		if l.users[i].ID == id {
			return &l.users[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (l *lookupRepo) GetUsersByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, err := l.GetUserByID(ctx, id); err == nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (l *lookupRepo) GetUsersByEmails(ctx context.Context, emails []string) ([]model.User, error) {
	var out []model.User
	for _, email := range emails {
		for i := range l.users {
			if l.users[i].Email != nil && *l.users[i].Email == email {
				out = append(out, l.users[i])
			}
		}
	}
	return out, nil
}

func newUserRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	a, b := "a@x.com", "b@x.com"
	svc := service.NewUserService(&lookupRepo{users: []model.User{
		{ID: 1, Username: "alice", Email: &a},
		{ID: 2, Username: "bob", Email: &b},
	}})

	h := NewUserHandler(svc)
	r := gin.New()
	r.GET("/users/:id", h.GetUser)
	r.POST("/users/batch", h.BatchUsers)
	return r
}

func TestGetUserByID(t *testing.T) {
	r := newUserRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/99", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestBatchUsers(t *testing.T) {
	r := newUserRouter(t)

	// Ids and emails resolving to the same user are deduplicated.
	body := `{"ids":[1,99],"emails":["a@x.com","b@x.com"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/batch", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp []model.UserResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 users, got %d", len(resp))
	}

	// Empty request is a client error.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/users/batch", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
