package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Port          string
	AllowedOrigin string
	// Generation backend
	Provider      string
	Model         string
	GoogleAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	// Optional YAML prompt spec overriding the embedded one
	PromptSpecFile string
	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads the process environment (and .env when present). The result is
// never mutated after startup.
func Load() Config {
	_ = godotenv.Load()
	provider := strings.ToLower(getEnvDefault("GENERATION_PROVIDER", ProviderGemini))
	cfg := Config{
		Port:           getEnvDefault("PORT", "5001"),
		AllowedOrigin:  getEnvDefault("ALLOWED_ORIGIN", "http://localhost:3000"),
		Provider:       provider,
		Model:          getEnvDefault("GENERATION_MODEL", defaultModel(provider)),
		GoogleAPIKey:   os.Getenv("GOOGLE_API_KEY"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		PromptSpecFile: os.Getenv("PROMPT_SPEC_FILE"),
		LogLevel:       getEnvDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvDefault("LOG_FORMAT", "auto"),
	}
	return cfg
}

// Validate reports configuration the server cannot start with.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if strings.TrimSpace(c.GoogleAPIKey) == "" {
			return errors.New("GOOGLE_API_KEY is not set")
		}
	case ProviderOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			return errors.New("OPENAI_API_KEY is not set")
		}
	default:
		return errors.Errorf("unknown GENERATION_PROVIDER %q", c.Provider)
	}
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT is empty")
	}
	return nil
}

// APIKey returns the credential of the configured provider.
func (c Config) APIKey() string {
	if c.Provider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GoogleAPIKey
}

func defaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return "gpt-4o-mini"
	}
	return "gemini-1.5-flash"
}

// ClientAPIURL is the server address used by the command line client.
func ClientAPIURL() string {
	_ = godotenv.Load()
	return getEnvDefault("TAXDESK_API_URL", "http://localhost:5001")
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
