// Package config handles application configuration.
//
// Go Pattern: Configuration via environment variables with sensible defaults.
// A local .env file is read first (if present) so development setups only
// need to drop their API key there. Variables already set in the real
// environment always win over the .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Summary providers supported by the summarization client.
const (
	ProviderGemini     = "gemini"
	ProviderVertex     = "vertex"
	ProviderOpenRouter = "openrouter"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    string
	GinMode string // "debug", "release", or "test"

	// Which generative-AI backend produces summaries
	SummaryProvider string
	SummaryTimeout  time.Duration

	// Google Generative Language API (the default provider)
	GoogleAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// Vertex AI (uses Application Default Credentials)
	VertexProjectID       string
	VertexRegion          string
	VertexModel           string
	VertexCredentialsFile string

	// OpenRouter (OpenAI-compatible chat completions)
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string

	// Circuit breaker around the provider
	BreakerFailureThreshold int
	BreakerOpenTimeout      time.Duration

	// Upload and extraction limits
	MinTextChars int   // Summaries are only attempted at or above this many characters
	MaxUploadMB  int64 // Largest accepted PDF
	TempDir      string

	// Rate limiting (summaries per hour per client IP)
	RateLimitPerHour int

	// CORS
	AllowedOrigins []string
}

// Load reads configuration from the environment (and .env) with defaults.
func Load() (*Config, error) {
	// A missing .env is normal in production; only a malformed one is an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		SummaryProvider: strings.ToLower(getEnv("SUMMARY_PROVIDER", ProviderGemini)),
		SummaryTimeout:  time.Duration(getEnvInt("SUMMARY_TIMEOUT_SECONDS", 120)) * time.Second,

		GoogleAPIKey:  getEnv("GOOGLE_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),

		VertexProjectID:       getEnv("VERTEX_PROJECT_ID", ""),
		VertexRegion:          getEnv("VERTEX_REGION", "us-central1"),
		VertexModel:           getEnv("VERTEX_MODEL", "gemini-1.5-flash"),
		VertexCredentialsFile: getEnv("VERTEX_CREDENTIALS_FILE", ""),

		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "google/gemini-flash-1.5"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),

		BreakerFailureThreshold: getEnvInt("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerOpenTimeout:      time.Duration(getEnvInt("BREAKER_OPEN_SECONDS", 30)) * time.Second,

		MinTextChars: getEnvInt("MIN_TEXT_CHARS", 100),
		MaxUploadMB:  int64(getEnvInt("MAX_UPLOAD_MB", 50)),
		TempDir:      getEnv("TEMP_DIR", ""),

		RateLimitPerHour: getEnvInt("RATE_LIMIT_PER_HOUR", 60),

		AllowedOrigins: splitList(getEnv("CORS_ORIGIN", "http://localhost:5173")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.SummaryProvider {
	case ProviderGemini, ProviderVertex, ProviderOpenRouter:
	default:
		return fmt.Errorf("unknown SUMMARY_PROVIDER %q (want gemini, vertex or openrouter)", c.SummaryProvider)
	}

	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown GIN_MODE %q (want debug, release or test)", c.GinMode)
	}

	if c.MinTextChars < 0 {
		return fmt.Errorf("MIN_TEXT_CHARS must not be negative")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}

	// In release mode we refuse to start without credentials for the chosen provider.
	// In debug mode the UI still works for extraction and reports the missing key.
	if c.GinMode == "release" && !c.ProviderConfigured() {
		return fmt.Errorf("credentials for SUMMARY_PROVIDER=%s are not set; refusing to start in release mode", c.SummaryProvider)
	}
	return nil
}

// ProviderConfigured reports whether the selected provider has its credentials.
func (c *Config) ProviderConfigured() bool {
	switch c.SummaryProvider {
	case ProviderGemini:
		return c.GoogleAPIKey != ""
	case ProviderVertex:
		return c.VertexProjectID != ""
	case ProviderOpenRouter:
		return c.OpenRouterAPIKey != ""
	}
	return false
}

// MaxUploadBytes is MaxUploadMB expressed in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// getEnv reads an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt reads an integer environment variable with a fallback.
func getEnvInt(key string, fallback int) int {
	str := getEnv(key, "")
	if str == "" {
		return fallback
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return fallback
	}
	return val
}

// splitList turns "a, b,c" into ["a" "b" "c"].
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
