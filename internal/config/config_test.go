package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "REDIS_ADDR", "REDIS_DB", "JWT_ALGORITHM",
		"JWT_ACCESS_TTL", "JWT_REFRESH_TTL", "AUTH_COOKIE_PATH",
		"CORS_ORIGINS", "CORS_ALLOW_CREDENTIALS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "0", cfg.Redis.DB)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, "15m", cfg.JWT.AccessTTL)
	assert.Equal(t, "720h", cfg.JWT.RefreshTTL)
	assert.Equal(t, "/", cfg.Cookie.Path)
	assert.Equal(t, "http://localhost:5173", cfg.CORS.Origins)
	assert.Equal(t, "true", cfg.CORS.AllowCredentials)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_ALGORITHM", "HS512")
	t.Setenv("VK_CLIENT_ID", "vk-id")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "HS512", cfg.JWT.Algorithm)
	assert.Equal(t, "vk-id", cfg.VK.ClientID)
}
