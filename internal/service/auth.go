package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xddprog/auth-backend/internal/auth"
	"github.com/xddprog/auth-backend/internal/config"
	"github.com/xddprog/auth-backend/internal/db"
	"github.com/xddprog/auth-backend/internal/model"
)

var (
	ErrUserAlreadyRegistered = errors.New("user already registered")
	ErrUserNotRegistered     = errors.New("user not registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidToken          = errors.New("invalid token")
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameTaken         = errors.New("username taken")
	ErrMisconfigured         = errors.New("auth config invalid")
)

// UserRepository is the slice of the store the auth service needs.
// *db.Postgres satisfies it; tests substitute a fake.
type UserRepository interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*model.User, error)
	CreateExternalUser(ctx context.Context, username string, email *string, provider, externalID string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByExternalIdentity(ctx context.Context, provider, externalID string) (*model.User, error)
}

type CookieConfig struct {
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

type AuthService struct {
	repo       UserRepository
	tokens     *auth.TokenService
	accessTTL  time.Duration
	refreshTTL time.Duration
	cookieCfg  CookieConfig
}

func NewAuthService(repo UserRepository, jwtCfg config.JWTConfig, cookieCfg config.CookieConfig) (*AuthService, error) {
	tokens, err := auth.NewTokenService(jwtCfg.Secret, jwtCfg.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMisconfigured, err)
	}

	accessTTL, err := time.ParseDuration(jwtCfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_ACCESS_TTL", ErrMisconfigured)
	}

	refreshTTL, err := time.ParseDuration(jwtCfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_REFRESH_TTL", ErrMisconfigured)
	}

	cookieSecure, err := parseBool(cookieCfg.Secure, false)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SECURE", ErrMisconfigured)
	}

	cookieSameSite, err := parseSameSite(cookieCfg.SameSite)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SAMESITE", ErrMisconfigured)
	}

	if cookieSameSite == http.SameSiteNoneMode && !cookieSecure {
		return nil, fmt.Errorf("%w: SameSite=None requires Secure cookie", ErrMisconfigured)
	}

	cookiePath := cookieCfg.Path
	if strings.TrimSpace(cookiePath) == "" {
		cookiePath = "/"
	}

	return &AuthService{
		repo:       repo,
		tokens:     tokens,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		cookieCfg: CookieConfig{
			Path:     cookiePath,
			Domain:   cookieCfg.Domain,
			Secure:   cookieSecure,
			SameSite: cookieSameSite,
		},
	}, nil
}

func (s *AuthService) CookieConfig() CookieConfig {
	return s.cookieCfg
}

func (s *AuthService) AccessCookieMaxAge() int {
	return int(s.accessTTL.Seconds())
}

func (s *AuthService) RefreshCookieMaxAge() int {
	return int(s.refreshTTL.Seconds())
}

// Register creates a local account and logs it in. A concurrent duplicate
// registration that slips past the pre-check still surfaces as
// ErrUserAlreadyRegistered via the unique constraint.
func (s *AuthService) Register(ctx context.Context, form model.RegisterForm) (*model.User, string, string, error) {
	existing, err := s.repo.GetUserByEmail(ctx, form.Email)
	if err != nil && !db.IsNoRows(err) {
		return nil, "", "", err
	}
	if existing != nil {
		return nil, "", "", ErrUserAlreadyRegistered
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		return nil, "", "", err
	}

	user, err := s.repo.CreateUser(ctx, form.Username, form.Email, hash)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, "", "", ErrUserAlreadyRegistered
		}
		return nil, "", "", err
	}

	access, refresh, err := s.issueTokens(user.Username)
	if err != nil {
		return nil, "", "", err
	}
	return user, access, refresh, nil
}

func (s *AuthService) Login(ctx context.Context, form model.LoginForm) (*model.User, string, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, form.Email)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, "", "", ErrUserNotRegistered
		}
		return nil, "", "", err
	}

	// External-only accounts have no password hash and cannot use the
	// local form.
	if user.PasswordHash == nil || !auth.CheckPassword(form.Password, *user.PasswordHash) {
		return nil, "", "", ErrInvalidCredentials
	}

	access, refresh, err := s.issueTokens(user.Username)
	if err != nil {
		return nil, "", "", err
	}
	return user, access, refresh, nil
}

// VerifyCurrentUser resolves the access token to a live account. A valid
// signature over a subject that no longer exists is still an invalid token:
// deleted or renamed accounts lose their sessions lazily, here.
func (s *AuthService) VerifyCurrentUser(ctx context.Context, accessToken string) (*model.User, error) {
	username, err := s.tokens.Verify(accessToken, auth.AccessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// RefreshAccessToken issues a fresh access token. The refresh token is not
// rotated; it stays valid until its own expiry.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	username, err := s.tokens.Verify(refreshToken, auth.RefreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}

	if _, err := s.repo.GetUserByUsername(ctx, username); err != nil {
		if db.IsNoRows(err) {
			return "", ErrInvalidToken
		}
		return "", err
	}

	return s.tokens.Issue(username, auth.AccessToken, s.accessTTL)
}

// LoginWithExternalIdentity reconciles a provider identity with the local
// store. The key is (provider, external_id): a first login creates the
// account and its auth method atomically, a repeat login finds it. A new
// identity whose username is already taken by someone else is a conflict,
// not a silent merge.
func (s *AuthService) LoginWithExternalIdentity(ctx context.Context, ext model.ExternalUser) (*model.User, string, string, error) {
	user, err := s.repo.GetUserByExternalIdentity(ctx, ext.Provider, ext.ExternalID)
	if err != nil && !db.IsNoRows(err) {
		return nil, "", "", err
	}

	if user == nil {
		user, err = s.repo.CreateExternalUser(ctx, ext.Username, ext.Email, ext.Provider, ext.ExternalID)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return nil, "", "", ErrUsernameTaken
			}
			return nil, "", "", err
		}
	}

	access, refresh, err := s.issueTokens(user.Username)
	if err != nil {
		return nil, "", "", err
	}
	return user, access, refresh, nil
}

func (s *AuthService) issueTokens(username string) (string, string, error) {
	access, err := s.tokens.Issue(username, auth.AccessToken, s.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.tokens.Issue(username, auth.RefreshToken, s.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func parseBool(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, err
	}
	return parsed, nil
}

func parseSameSite(value string) (http.SameSite, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	switch value {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, errors.New("unknown SameSite value")
	}
}
