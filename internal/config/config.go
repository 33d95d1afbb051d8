package config

import "os"

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	CORS     CORSConfig
	VK       OAuthConfig
	Yandex   OAuthConfig
}

type ServerConfig struct {
	Addr string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       string
}

type JWTConfig struct {
	Secret     string
	Algorithm  string
	AccessTTL  string
	RefreshTTL string
}

type CookieConfig struct {
	Path     string
	Domain   string
	Secure   string
	SameSite string
}

type CORSConfig struct {
	Origins          string
	AllowCredentials string
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Addr: getenv("HTTP_ADDR", ":8080"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenv("REDIS_DB", "0"),
		},
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			Algorithm:  getenv("JWT_ALGORITHM", "HS256"),
			AccessTTL:  getenv("JWT_ACCESS_TTL", "15m"),
			RefreshTTL: getenv("JWT_REFRESH_TTL", "720h"),
		},
		Cookie: CookieConfig{
			Path:     getenv("AUTH_COOKIE_PATH", "/"),
			Domain:   os.Getenv("AUTH_COOKIE_DOMAIN"),
			Secure:   os.Getenv("AUTH_COOKIE_SECURE"),
			SameSite: os.Getenv("AUTH_COOKIE_SAMESITE"),
		},
		CORS: CORSConfig{
			Origins:          getenv("CORS_ORIGINS", "http://localhost:5173"),
			AllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "true"),
		},
		VK: OAuthConfig{
			ClientID:     os.Getenv("VK_CLIENT_ID"),
			ClientSecret: os.Getenv("VK_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("VK_REDIRECT_URL"),
		},
		Yandex: OAuthConfig{
			ClientID:     os.Getenv("YANDEX_CLIENT_ID"),
			ClientSecret: os.Getenv("YANDEX_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("YANDEX_REDIRECT_URL"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
