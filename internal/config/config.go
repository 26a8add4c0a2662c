package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
	ProviderRelay   = "relay"
	ProviderOffline = "offline"

	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	Port           string
	AllowedOrigin  string
	LogLevel       string
	LogDevelopment bool

	// Remote provider
	Provider      string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiAPIKey  string
	GeminiModel   string
	// Relay forwards turns to an HTTP endpoint speaking the engine's JSON contract
	RelayURL          string
	RelayClientID     string
	RelayClientSecret string
	RelayTokenURL     string

	RemoteTimeout time.Duration
	HistoryWindow int

	// Conversation persistence
	Store       string
	StoreDir    string
	DatabaseURL string
	SQLitePath  string
}

func Load() Config {
	_ = godotenv.Load()
	return Config{
		Port:              getEnvDefault("PORT", "8080"),
		AllowedOrigin:     getEnvDefault("ALLOWED_ORIGIN", "*"),
		LogLevel:          getEnvDefault("LOG_LEVEL", "info"),
		LogDevelopment:    getEnvBoolDefault("LOG_DEVELOPMENT", false),
		Provider:          strings.ToLower(getEnvDefault("HAYAT_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnvDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		RelayURL:          os.Getenv("RELAY_URL"),
		RelayClientID:     os.Getenv("RELAY_CLIENT_ID"),
		RelayClientSecret: os.Getenv("RELAY_CLIENT_SECRET"),
		RelayTokenURL:     os.Getenv("RELAY_TOKEN_URL"),
		RemoteTimeout:     getEnvDurationDefault("HAYAT_REMOTE_TIMEOUT", 20*time.Second),
		HistoryWindow:     getEnvIntDefault("HAYAT_HISTORY_WINDOW", 10),
		Store:             strings.ToLower(getEnvDefault("HAYAT_STORE", StoreMemory)),
		StoreDir:          getEnvDefault("HAYAT_STORE_DIR", "data/conversations"),
		DatabaseURL:       os.Getenv("DB_URL"),
		SQLitePath:        getEnvDefault("SQLITE_PATH", "data/hayat.db"),
	}
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderRelay, ProviderOffline:
	default:
		return fmt.Errorf("unknown HAYAT_PROVIDER %q", c.Provider)
	}
	switch c.Store {
	case StoreMemory, StoreFile, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DB_URL is required when HAYAT_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown HAYAT_STORE %q", c.Store)
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("HAYAT_REMOTE_TIMEOUT must be positive")
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("HAYAT_HISTORY_WINDOW must not be negative")
	}
	return nil
}

// Warnings lists settings that leave the server running in local-only mode.
func (c Config) Warnings() []string {
	var out []string
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			out = append(out, "OPENAI_API_KEY is not set; every reply will come from the local engine")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			out = append(out, "GEMINI_API_KEY is not set; every reply will come from the local engine")
		}
	case ProviderRelay:
		if c.RelayURL == "" {
			out = append(out, "RELAY_URL is not set; every reply will come from the local engine")
		}
	}
	return out
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// getEnvDurationDefault accepts Go durations ("20s") or a bare number of seconds.
func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}
