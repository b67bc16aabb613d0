package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	LogFormat          string
	DatabaseURL        string
	CORSAllowedOrigins []string
	SeedDemoData       bool
	ClinicTimezone     string

	RedisAddr             string
	RedisPassword         string
	RedisTLS              bool
	TranscriptMaxMessages int64
	TranscriptTTL         time.Duration

	// Generative language service. An empty key keeps the assistant in rule-only mode.
	GeminiAPIKey      string
	GeminiTransport   string
	GeminiMaxAttempts int
	GeminiRetryDelay  time.Duration
	GeminiHTTPTimeout time.Duration

	ChatbotJWTSecret string
	ChatbotRateLimit float64
	ChatbotRateBurst int
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		SeedDemoData:       getEnvAsBool("SEED_DEMO_DATA", false),
		ClinicTimezone:     getEnv("CLINIC_TIMEZONE", "Local"),

		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisTLS:              getEnvAsBool("REDIS_TLS", false),
		TranscriptMaxMessages: int64(getEnvAsInt("TRANSCRIPT_MAX_MESSAGES", 200)),
		TranscriptTTL:         getEnvAsDuration("TRANSCRIPT_TTL", 24*time.Hour),

		GeminiAPIKey:      strings.TrimSpace(getEnv("GEMINI_API_KEY", "")),
		GeminiTransport:   strings.ToLower(strings.TrimSpace(getEnv("GEMINI_TRANSPORT", "rest"))),
		GeminiMaxAttempts: getEnvAsInt("GEMINI_MAX_ATTEMPTS", 2),
		GeminiRetryDelay:  getEnvAsDuration("GEMINI_RETRY_DELAY", time.Second),
		GeminiHTTPTimeout: getEnvAsPositiveDuration("GEMINI_HTTP_TIMEOUT", 60*time.Second),

		ChatbotJWTSecret: getEnv("CHATBOT_JWT_SECRET", ""),
		ChatbotRateLimit: getEnvAsFloat("CHATBOT_RATE_LIMIT", 5),
		ChatbotRateBurst: getEnvAsInt("CHATBOT_RATE_BURST", 10),
	}
}

// Location resolves ClinicTimezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c == nil || c.ClinicTimezone == "" || strings.EqualFold(c.ClinicTimezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsPositiveDuration is getEnvAsDuration with zero and negative values
// replaced by the default.
func getEnvAsPositiveDuration(key string, defaultValue time.Duration) time.Duration {
	if value := getEnvAsDuration(key, defaultValue); value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
