package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	LogLevel           string
	CORSAllowedOrigins []string

	// Sheet store backend
	SheetsAPIURL   string
	SheetsAPIToken string
	SheetsDocID    string
	CacheTTLSec    int

	// Generation
	GeminiAPIKey string
	GeminiModel  string

	// Trial gate
	TrialGraceDays int

	// Login abuse protection
	LoginRatePerMinute int
	LoginBurst         int

	// Session tokens
	JWTSecret      string
	SessionTTLMins int
}

// Load reads configuration from environment variables. The sheet store
// coordinates and the generation key have no sane defaults and are
// required.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	cacheTTL, err := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL_SECONDS: %w", err)
	}

	graceDays, err := strconv.Atoi(getEnv("TRIAL_GRACE_DAYS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRIAL_GRACE_DAYS: %w", err)
	}

	ratePerMinute, err := strconv.Atoi(getEnv("LOGIN_RATE_PER_MINUTE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_PER_MINUTE: %w", err)
	}

	burst, err := strconv.Atoi(getEnv("LOGIN_BURST", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_BURST: %w", err)
	}

	sessionTTL, err := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "480"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_MINUTES: %w", err)
	}

	cfg := &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		ServerPort:         port,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		SheetsAPIURL:       os.Getenv("SHEETS_API_URL"),
		SheetsAPIToken:     os.Getenv("SHEETS_API_TOKEN"),
		SheetsDocID:        os.Getenv("SHEETS_DOC_ID"),
		CacheTTLSec:        cacheTTL,
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		TrialGraceDays:     graceDays,
		LoginRatePerMinute: ratePerMinute,
		LoginBurst:         burst,
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret-change-me"),
		SessionTTLMins:     sessionTTL,
	}

	for name, value := range map[string]string{
		"SHEETS_API_URL":   cfg.SheetsAPIURL,
		"SHEETS_API_TOKEN": cfg.SheetsAPIToken,
		"SHEETS_DOC_ID":    cfg.SheetsDocID,
		"GEMINI_API_KEY":   cfg.GeminiAPIKey,
	} {
		if value == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
