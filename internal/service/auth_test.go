package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xddprog/auth-backend/internal/auth"
	"github.com/xddprog/auth-backend/internal/config"
	"github.com/xddprog/auth-backend/internal/model"
)

// fakeUserRepo is an in-memory UserRepository enforcing the same uniqueness
// rules as the real schema (username, email, (provider, external_id)).
type fakeUserRepo struct {
	users   []*model.User
	methods []model.AuthMethod
	nextID  int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1}
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, username, email, passwordHash string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username || (u.Email != nil && *u.Email == email) {
			return nil, uniqueViolation()
		}
	}
	user := &model.User{
		ID:           f.nextID,
		Username:     username,
		Email:        &email,
		PasswordHash: &passwordHash,
	}
	f.nextID++
	f.users = append(f.users, user)
	return user, nil
}

func (f *fakeUserRepo) CreateExternalUser(ctx context.Context, username string, email *string, provider, externalID string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return nil, uniqueViolation()
		}
	}
	for _, m := range f.methods {
		if m.Provider == provider && m.ExternalID == externalID {
			return nil, uniqueViolation()
		}
	}
	user := &model.User{ID: f.nextID, Username: username, Email: email}
	f.nextID++
	f.users = append(f.users, user)
	f.methods = append(f.methods, model.AuthMethod{
		UserID:     user.ID,
		Provider:   provider,
		ExternalID: externalID,
	})
	return user, nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetUserByExternalIdentity(ctx context.Context, provider, externalID string) (*model.User, error) {
	for _, m := range f.methods {
		if m.Provider == provider && m.ExternalID == externalID {
			for _, u := range f.users {
				if u.ID == m.UserID {
					return u, nil
				}
			}
		}
	}
	return nil, pgx.ErrNoRows
}

func newTestAuthService(t *testing.T, repo UserRepository) *AuthService {
	t.Helper()
	svc, err := NewAuthService(repo, config.JWTConfig{
		Secret:     "test-secret-at-least-16-chars!!",
		Algorithm:  "HS256",
		AccessTTL:  "15m",
		RefreshTTL: "720h",
	}, config.CookieConfig{})
	require.NoError(t, err)
	return svc
}

func TestNewAuthServiceMisconfigured(t *testing.T) {
	repo := newFakeUserRepo()
	cases := []struct {
		name string
		jwt  config.JWTConfig
		ck   config.CookieConfig
	}{
		{"missing secret", config.JWTConfig{Algorithm: "HS256", AccessTTL: "15m", RefreshTTL: "720h"}, config.CookieConfig{}},
		{"bad algorithm", config.JWTConfig{Secret: "s", Algorithm: "RS256", AccessTTL: "15m", RefreshTTL: "720h"}, config.CookieConfig{}},
		{"bad access ttl", config.JWTConfig{Secret: "s", Algorithm: "HS256", AccessTTL: "soon", RefreshTTL: "720h"}, config.CookieConfig{}},
		{"bad refresh ttl", config.JWTConfig{Secret: "s", Algorithm: "HS256", AccessTTL: "15m", RefreshTTL: "later"}, config.CookieConfig{}},
		{"bad samesite", config.JWTConfig{Secret: "s", Algorithm: "HS256", AccessTTL: "15m", RefreshTTL: "720h"}, config.CookieConfig{SameSite: "sideways"}},
		{"samesite none insecure", config.JWTConfig{Secret: "s", Algorithm: "HS256", AccessTTL: "15m", RefreshTTL: "720h"}, config.CookieConfig{SameSite: "none", Secure: "false"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAuthService(repo, tc.jwt, tc.ck)
			assert.ErrorIs(t, err, ErrMisconfigured)
		})
	}
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	user, access, refresh, err := svc.Register(ctx, model.RegisterForm{
		Username: "alice",
		Email:    "a@x.com",
		Password: "pw",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	require.NotNil(t, user.Email)
	assert.Equal(t, "a@x.com", *user.Email)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	// The stored hash verifies the original password and rejects others.
	require.NotNil(t, user.PasswordHash)
	assert.True(t, auth.CheckPassword("pw", *user.PasswordHash))
	assert.False(t, auth.CheckPassword("wrong", *user.PasswordHash))

	logged, _, _, err := svc.Login(ctx, model.LoginForm{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.Equal(t, user.Username, logged.Username)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	_, _, _, err := svc.Register(ctx, model.RegisterForm{Username: "alice", Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, model.RegisterForm{Username: "alice2", Email: "a@x.com", Password: "pw2"})
	assert.ErrorIs(t, err, ErrUserAlreadyRegistered)
	assert.Len(t, repo.users, 1)
}

// raceyRepo hides the existing user from the pre-check so the insert runs
// into the unique constraint, the way two concurrent registrations would.
type raceyRepo struct {
	*fakeUserRepo
}

func (r *raceyRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, pgx.ErrNoRows
}

func TestRegisterConstraintRace(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, &raceyRepo{repo})

	_, _, _, err := svc.Register(ctx, model.RegisterForm{Username: "alice", Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, model.RegisterForm{Username: "bob", Email: "a@x.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrUserAlreadyRegistered)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	_, _, _, err := svc.Register(ctx, model.RegisterForm{Username: "alice", Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, model.LoginForm{Email: "nobody@x.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrUserNotRegistered)

	_, _, _, err = svc.Login(ctx, model.LoginForm{Email: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginExternalOnlyAccount(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	email := "v@x.com"
	_, _, _, err := svc.LoginWithExternalIdentity(ctx, model.ExternalUser{
		Provider:   model.ProviderVK,
		ExternalID: "100",
		Username:   "Vasya Pupkin",
		Email:      &email,
	})
	require.NoError(t, err)

	// No password hash on the account, so the local form cannot match.
	_, _, _, err = svc.Login(ctx, model.LoginForm{Email: "v@x.com", Password: "anything"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyCurrentUser(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	_, access, _, err := svc.Register(ctx, model.RegisterForm{Username: "alice", Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	user, err := svc.VerifyCurrentUser(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.VerifyCurrentUser(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyCurrentUser(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyCurrentUserDeletedAccount(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	_, access, _, err := svc.Register(ctx, model.RegisterForm{Username: "alice", Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	// The signature is still valid, but the subject no longer resolves.
	repo.users = nil
	_, err = svc.VerifyCurrentUser(ctx, access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshAccessToken(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	_, access, refresh, err := svc.Register(ctx, model.RegisterForm{Username: "alice", Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	newAccess, err := svc.RefreshAccessToken(ctx, refresh)
	require.NoError(t, err)
	user, err := svc.VerifyCurrentUser(ctx, newAccess)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	// No rotation: the same refresh token keeps working.
	_, err = svc.RefreshAccessToken(ctx, refresh)
	assert.NoError(t, err)

	// An access token is not a refresh token.
	_, err = svc.RefreshAccessToken(ctx, access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLoginWithExternalIdentity(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	first, access, refresh, err := svc.LoginWithExternalIdentity(ctx, model.ExternalUser{
		Provider:   model.ProviderYandex,
		ExternalID: "yx-1",
		Username:   "Ivan Ivanov",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.Nil(t, first.Email)
	assert.Len(t, repo.methods, 1)

	// Repeat login with the same identity lands on the same account.
	again, _, _, err := svc.LoginWithExternalIdentity(ctx, model.ExternalUser{
		Provider:   model.ProviderYandex,
		ExternalID: "yx-1",
		Username:   "Ivan Ivanov",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, repo.users, 1)
}

func TestLoginWithExternalIdentityUsernameTaken(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	_, _, _, err := svc.Register(ctx, model.RegisterForm{Username: "Ivan Ivanov", Email: "i@x.com", Password: "pw"})
	require.NoError(t, err)

	// A different external identity with a colliding username is a
	// conflict, not a merge into the existing account.
	_, _, _, err = svc.LoginWithExternalIdentity(ctx, model.ExternalUser{
		Provider:   model.ProviderVK,
		ExternalID: "vk-9",
		Username:   "Ivan Ivanov",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}
