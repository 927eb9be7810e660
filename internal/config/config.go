// Package config reads application settings from the environment, with a
// .env file loaded first for local development.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the server needs.
type Config struct {
	Port string

	DB DBConfig

	// JWTSecret signs access and refresh tokens; JWTExpiry bounds access
	// token lifetime.
	JWTSecret string
	JWTExpiry time.Duration

	// AuthSecret is the shared secret accepted by the token-exchange login
	// flow.
	AuthSecret string

	// DefaultLimit is the page size used when a listing request supplies
	// none.
	DefaultLimit int

	// BaseURL prefixes stored document names to build public URLs.
	BaseURL string

	// UploadDir is where multipart image uploads are written.
	UploadDir string

	LogLevel  string
	LogFormat string
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds a libpq-compatible connection string for pgx.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// URL builds a postgres:// URL, as required by golang-migrate.
func (c DBConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password),
		c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port: getEnv("PORT", "8080"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "eventhub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTExpiry:    getDuration("JWT_EXPIRY", 2*time.Hour),
		AuthSecret:   getEnv("AUTH_SECRET", ""),
		DefaultLimit: getInt("DEFAULT_LIMIT", 10),
		BaseURL:      getEnv("BASE_URL", "http://localhost:8080/img/"),
		UploadDir:    getEnv("UPLOAD_DIR", "public/img"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "console"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
