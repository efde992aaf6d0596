package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "ALLOWED_ORIGIN", "GENERATION_PROVIDER", "GENERATION_MODEL",
		"GOOGLE_API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL", "PROMPT_SPEC_FILE",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, "5001", cfg.Port)
	assert.Equal(t, "http://localhost:3000", cfg.AllowedOrigin)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-1.5-flash", cfg.Model)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.LogFormat)
}

func TestLoadOpenAIProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENERATION_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := Load()
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "sk-test", cfg.APIKey())
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "gemini ok", cfg: Config{Provider: ProviderGemini, GoogleAPIKey: "k", Port: "5001"}},
		{name: "missing google key", cfg: Config{Provider: ProviderGemini, Port: "5001"}, wantErr: "GOOGLE_API_KEY"},
		{name: "missing openai key", cfg: Config{Provider: ProviderOpenAI, GoogleAPIKey: "k", Port: "5001"}, wantErr: "OPENAI_API_KEY"},
		{name: "unknown provider", cfg: Config{Provider: "llama", Port: "5001"}, wantErr: "unknown GENERATION_PROVIDER"},
		{name: "empty port", cfg: Config{Provider: ProviderGemini, GoogleAPIKey: "k"}, wantErr: "PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClientAPIURL(t *testing.T) {
	t.Setenv("TAXDESK_API_URL", "")
	assert.Equal(t, "http://localhost:5001", ClientAPIURL())

	t.Setenv("TAXDESK_API_URL", "http://tax.internal:8080")
	assert.Equal(t, "http://tax.internal:8080", ClientAPIURL())
}
