package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind is embedded in the typ claim so a refresh token can never be
// replayed as an access token.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

const issuer = "auth-backend"

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMisconfigured = errors.New("token config invalid")
)

// TokenService signs and verifies the session tokens. It knows nothing
// about the user store: Verify only returns the embedded subject, and the
// caller decides whether that subject still resolves to an account.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
}

type sessionClaims struct {
	Kind TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

// NewTokenService builds a codec for the given shared secret and HMAC
// algorithm name (HS256, HS384 or HS512).
func NewTokenService(secret, algorithm string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}

	method := jwt.GetSigningMethod(strings.ToUpper(algorithm))
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: unsupported JWT_ALGORITHM %q", ErrMisconfigured, algorithm)
	}

	return &TokenService{secret: []byte(secret), method: method}, nil
}

// Issue signs a token for the subject, valid for ttl from now.
func (s *TokenService) Issue(subject string, kind TokenKind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and token kind, and returns the
// embedded subject. Every failure mode collapses to ErrInvalidToken so the
// boundary cannot distinguish "no session" from "bad session".
func (s *TokenService) Verify(tokenStr string, kind TokenKind) (string, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return "", ErrInvalidToken
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(
		tokenStr,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Kind != kind || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
