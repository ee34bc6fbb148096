// Package config collects the environment-driven settings in one place.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the process reads from the environment.
type Config struct {
	Port        string
	CORSOrigins []string

	// Primary tier. Empty DSN means local-only operation.
	PostgresDSN    string
	PrimaryTimeout time.Duration

	// Local fallback tiers.
	SQLitePath string
	BadgerDir  string

	SessionTTL time.Duration

	// Sentiment inference endpoint.
	SentimentURL    string
	SentimentAPIKey string

	// Provider chain.
	GeminiAPIKey    string
	GeminiModel     string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	ProviderTimeout time.Duration
	ProviderRetries int

	ContextWindow int
}

// Load reads the configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		Port:            getenv("MINDFULMATE_PORT", "8000"),
		CORSOrigins:     splitList(getenv("MINDFULMATE_CORS_ORIGINS", "http://localhost:3000")),
		PostgresDSN:     os.Getenv("MINDFULMATE_POSTGRES_DSN"),
		PrimaryTimeout:  getenvDuration("MINDFULMATE_PRIMARY_TIMEOUT", 3*time.Second),
		SQLitePath:      getenv("MINDFULMATE_SQLITE_PATH", "./mindfulmate.db"),
		BadgerDir:       getenv("MINDFULMATE_BADGER_DIR", "./mindfulmate-memory"),
		SessionTTL:      getenvDuration("MINDFULMATE_SESSION_TTL", 30*24*time.Hour),
		SentimentURL: getenv("MINDFULMATE_SENTIMENT_URL",
			"https://api-inference.huggingface.co/models/distilbert-base-uncased-finetuned-sst-2-english"),
		SentimentAPIKey: os.Getenv("MINDFULMATE_SENTIMENT_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getenv("MINDFULMATE_GEMINI_MODEL", "gemini-1.5-flash"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     getenv("MINDFULMATE_OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:   os.Getenv("MINDFULMATE_OPENAI_BASE_URL"),
		ProviderTimeout: getenvDuration("MINDFULMATE_PROVIDER_TIMEOUT", 30*time.Second),
		ProviderRetries: getenvInt("MINDFULMATE_PROVIDER_RETRIES", 2),
		ContextWindow:   getenvInt("MINDFULMATE_CONTEXT_WINDOW", 10),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
