package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devEnvironment = "development"

// Config настройки сервиса из окружения
type Config struct {
	Environment        string
	ServerAddress      string
	PostgresConn       string
	JWTSecret          string
	TokenTTL           time.Duration
	RedisURL           string
	LoginMaxAttempts   int
	LoginWindow        time.Duration
	CORSAllowedOrigins []string
	LogLevel           string
	RunMigrations      bool

	// пустой OTelEndpoint отключает трассировку
	OTelEndpoint     string
	OTelInsecure     bool
	TraceSampleRatio float64
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv собирает Config только из переменных окружения
func FromEnv() (*Config, error) {
	conn := os.Getenv("POSTGRES_CONN")
	if conn == "" {
		return nil, errors.New("POSTGRES_CONN env variable is not set")
	}
	conn, err := WithDatabase(conn, os.Getenv("POSTGRES_DB"))
	if err != nil {
		return nil, err
	}

	ttlMinutes, err := strconv.Atoi(getEnv("ACCESS_TOKEN_EXPIRE_MINUTES", "60"))
	if err != nil || ttlMinutes <= 0 {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_EXPIRE_MINUTES: %q", os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"))
	}

	maxAttempts, err := strconv.Atoi(getEnv("LOGIN_MAX_ATTEMPTS", "5"))
	if err != nil || maxAttempts <= 0 {
		return nil, fmt.Errorf("invalid LOGIN_MAX_ATTEMPTS: %q", os.Getenv("LOGIN_MAX_ATTEMPTS"))
	}

	windowMinutes, err := strconv.Atoi(getEnv("LOGIN_WINDOW_MINUTES", "15"))
	if err != nil || windowMinutes <= 0 {
		return nil, fmt.Errorf("invalid LOGIN_WINDOW_MINUTES: %q", os.Getenv("LOGIN_WINDOW_MINUTES"))
	}

	runMigrations, err := strconv.ParseBool(getEnv("RUN_MIGRATIONS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_MIGRATIONS: %w", err)
	}

	otelInsecure, err := strconv.ParseBool(getEnv("OTEL_EXPORTER_OTLP_INSECURE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid OTEL_EXPORTER_OTLP_INSECURE: %w", err)
	}

	sampleRatio, err := strconv.ParseFloat(getEnv("OTEL_TRACES_SAMPLER_ARG", "1"), 64)
	if err != nil || sampleRatio < 0 || sampleRatio > 1 {
		return nil, fmt.Errorf("invalid OTEL_TRACES_SAMPLER_ARG: %q", os.Getenv("OTEL_TRACES_SAMPLER_ARG"))
	}

	cfg := &Config{
		Environment:        getEnv("ENVIRONMENT", devEnvironment),
		ServerAddress:      getEnv("SERVER_ADDRESS", "0.0.0.0:8080"),
		PostgresConn:       conn,
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenTTL:           time.Duration(ttlMinutes) * time.Minute,
		RedisURL:           os.Getenv("REDIS_URL"),
		LoginMaxAttempts:   maxAttempts,
		LoginWindow:        time.Duration(windowMinutes) * time.Minute,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		RunMigrations:      runMigrations,
		OTelEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTelInsecure:       otelInsecure,
		TraceSampleRatio:   sampleRatio,
	}

	if cfg.JWTSecret == "" {
		if cfg.Environment != devEnvironment {
			return nil, errors.New("JWT_SECRET env variable is not set")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}
	return cfg, nil
}

// WithDatabase подменяет имя базы в строке подключения.
// Поддерживает URL (postgres://...) и формат key=value.
func WithDatabase(conn, dbName string) (string, error) {
	if dbName == "" {
		return conn, nil
	}
	if strings.HasPrefix(conn, "postgres://") || strings.HasPrefix(conn, "postgresql://") {
		u, err := url.Parse(conn)
		if err != nil {
			return "", fmt.Errorf("invalid POSTGRES_CONN: %w", err)
		}
		u.Path = "/" + dbName
		return u.String(), nil
	}

	fields := strings.Fields(conn)
	kept := fields[:0]
	for _, f := range fields {
		if !strings.HasPrefix(f, "dbname=") {
			kept = append(kept, f)
		}
	}
	kept = append(kept, "dbname="+dbName)
	return strings.Join(kept, " "), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
