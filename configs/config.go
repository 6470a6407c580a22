package configs

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// AppConfig holds everything read from the environment at startup.
type AppConfig struct {
	Env           string // "development" | "production"
	ListenAddr    string
	BaseURL       string // public base URL, used for invite links and QR targets
	SessionSecret string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	cfg := &AppConfig{
		Env:           getEnv("APP_ENV", "development"),
		ListenAddr:    getEnv("LISTEN_ADDR", ":3000"),
		BaseURL:       getEnv("APP_BASE_URL", "http://localhost:3000"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getEnv("DB_NAME", "rsvplink"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	return cfg, nil
}

// IsProduction reports whether the app runs with production hardening
// (secure cookies, JSON logs).
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// DSN builds the postgres connection string.
func (c *AppConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
