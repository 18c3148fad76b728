package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the server reads from the environment.  All
// clients are constructed from it at startup; nothing else in the
// codebase touches os.Getenv.
type Config struct {
	// DatabaseURL is the Postgres DSN.  Empty means the server runs
	// storeless: chat still works but keeps no history, and the
	// dashboard and analysis endpoints report the store as unavailable.
	DatabaseURL string
	// OpenAIKey is the completion-service API key.  Empty is tolerated
	// at startup and surfaces as a 500 on any endpoint needing
	// completion.
	OpenAIKey string
	Model     string
	Port      string
	// Environment is reported by the health endpoint.
	Environment string
	// StoreOptional selects the chat path's degraded mode on store
	// failure.  See core.EngineOptions.
	StoreOptional bool
	// NotifyChannel is the Postgres channel notified after analysis.
	NotifyChannel string
	// CompletionTimeout bounds each completion call.
	CompletionTimeout time.Duration
}

// FromEnv reads the configuration from environment variables, applying
// defaults.  Call godotenv.Load first if a .env file should be honored.
func FromEnv() Config {
	return Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		Model:             envDefault("OPENAI_MODEL", "gpt-3.5-turbo"),
		Port:              envDefault("PORT", "8080"),
		Environment:       envDefault("APP_ENV", "development"),
		StoreOptional:     envBool("STORE_OPTIONAL", true),
		NotifyChannel:     envDefault("NOTIFY_CHANNEL", "conversation_analyzed"),
		CompletionTimeout: time.Duration(envInt("COMPLETION_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
