package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xddprog/auth-backend/internal/model"
)

type fakeLookupRepo struct {
	users []model.User
}

func (f *fakeLookupRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeLookupRepo) GetUsersByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, err := f.GetUserByID(ctx, id); err == nil {
			out = append(out, *u)
		}
	}
	if out == nil {
		out = []model.User{}
	}
	return out, nil
}

func (f *fakeLookupRepo) GetUsersByEmails(ctx context.Context, emails []string) ([]model.User, error) {
	var out []model.User
	for _, email := range emails {
		for i := range f.users {
			if f.users[i].Email != nil && *f.users[i].Email == email {
				out = append(out, f.users[i])
			}
		}
	}
	if out == nil {
		out = []model.User{}
	}
	return out, nil
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	email := "a@x.com"
	svc := NewUserService(&fakeLookupRepo{users: []model.User{
		{ID: 1, Username: "alice", Email: &email},
	}})

	user, err := svc.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.GetUser(ctx, 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUsersBatch(t *testing.T) {
	ctx := context.Background()
	a, b := "a@x.com", "b@x.com"
	svc := NewUserService(&fakeLookupRepo{users: []model.User{
		{ID: 1, Username: "alice", Email: &a},
		{ID: 2, Username: "bob", Email: &b},
	}})

	// Partial hits are fine: unknown ids are simply absent from the result.
	users, err := svc.GetUsersByIDs(ctx, []int64{1, 2, 99})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = svc.GetUsersByEmails(ctx, []string{"b@x.com", "missing@x.com"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)
}
