package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all service settings, read from environment variables.
type Config struct {
	Port          string
	DatabaseURL   string
	MigrationsDir string
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
	Env           string

	// LogFile enables a rotating file sink next to stdout when set.
	LogFile string

	// ExposeResetTokens returns password-reset tokens in the
	// forgot-password response. Only honored outside prod.
	ExposeResetTokens bool

	ReportRunnerInterval time.Duration
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Production reports whether the service runs with production settings.
func (c *Config) Production() bool { return c.Env == "prod" }

func Load() *Config {
	return &Config{
		Port:                 getenv("PORT", "8080"),
		DatabaseURL:          getenv("DATABASE_URL", "postgres://pguser:pgpass@db:5432/volunteerdb?sslmode=disable"),
		MigrationsDir:        getenv("MIGRATIONS_DIR", "./migrations"),
		JWTSecret:            getenv("JWT_SECRET", "dev-jwt-secret-change-me"),
		TokenTTL:             getdur("TOKEN_TTL", time.Hour),
		ResetTokenTTL:        getdur("RESET_TOKEN_TTL", time.Hour),
		Env:                  getenv("ENV", "dev"),
		LogFile:              os.Getenv("LOG_FILE"),
		ExposeResetTokens:    os.Getenv("EXPOSE_RESET_TOKENS") == "1",
		ReportRunnerInterval: getdur("REPORT_RUNNER_INTERVAL", time.Minute),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
