package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Signing secrets shorter than this are rejected at startup.
const MinJWTSecretLen = 32

var ErrWeakJWTSecret = errors.New("JWT_SECRET must be at least 32 bytes")

type Config struct {
	Env  string
	Port int

	DBURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret     string
	JWTTTLMinutes int

	AdminUsername string
	AdminEmail    string
	AdminPassword string

	CORSAllowedOrigins []string

	TracingEnabled bool
	OTLPEndpoint   string
}

func Load() (Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		DBURL: buildDBURL(),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 60),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		CORSAllowedOrigins: splitEnv("CORS_ALLOWED_ORIGINS"),

		TracingEnabled: getEnv("TRACING_ENABLED", "") == "1",
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// Fail at startup, not on the first login.
	if len(cfg.JWTSecret) < MinJWTSecretLen {
		return Config{}, ErrWeakJWTSecret
	}

	return cfg, nil
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func buildDBURL() string {
	if url := os.Getenv("DB_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "bloghub")
	pass := getEnv("DB_PASSWORD", "bloghub")
	name := getEnv("DB_NAME", "bloghub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func splitEnv(key string) []string {
	raw := os.Getenv(key)

	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
