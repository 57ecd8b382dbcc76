package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPHost   string
	HTTPPort   string
	MySQLDSN   string
	AppBaseURL string
	Resend     ResendConfig
	Argon2     Argon2Config
	Log        LogConfig
}

type ResendConfig struct {
	APIURL    string
	APIKey    string
	FromEmail string
}

// Argon2Config holds the work factors for credential derivation.
// Defaults follow the RFC 9106 second recommended profile (64 MiB, t=3, p=4).
type Argon2Config struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	resendAPIKey := os.Getenv("RESEND_API_KEY")
	if resendAPIKey == "" {
		return nil, errors.New("RESEND_API_KEY environment variable is required")
	}

	fromEmail := os.Getenv("EMAIL_FROM")
	if fromEmail == "" {
		return nil, errors.New("EMAIL_FROM environment variable is required")
	}

	appBaseURL := os.Getenv("APP_BASE_URL")
	if appBaseURL == "" {
		return nil, errors.New("APP_BASE_URL environment variable is required")
	}

	return &Config{
		HTTPHost:   getEnv("HTTP_HOST", ""),
		HTTPPort:   getEnv("HTTP_PORT", "8080"),
		MySQLDSN:   mysqlDSN,
		AppBaseURL: appBaseURL,
		Resend: ResendConfig{
			APIURL:    getEnv("RESEND_API_URL", "https://api.resend.com/emails"),
			APIKey:    resendAPIKey,
			FromEmail: fromEmail,
		},
		Argon2: Argon2Config{
			MemoryKiB:   uint32(getIntEnv("ARGON2_MEMORY_KIB", 65536)),
			Iterations:  uint32(getIntEnv("ARGON2_ITERATIONS", 3)),
			Parallelism: uint8(getIntEnv("ARGON2_PARALLELISM", 4)),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}, nil
}

func (c *Config) DSN() string {
	return c.MySQLDSN
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
