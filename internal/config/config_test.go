package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLMModel)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, time.Hour, cfg.SessionTimeout)
	assert.Equal(t, 100, cfg.MaxSessions)
	assert.Equal(t, "games", cfg.GamesDirectory)
	assert.Equal(t, 100, cfg.DefaultMaxSteps)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, defaultCORSOrigins, cfg.CORSOrigins)
	assert.False(t, cfg.LLMConfigured())
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("GEMINI_TIMEOUT", "5")
	t.Setenv("SESSION_TIMEOUT", "60")
	t.Setenv("MAX_SESSIONS", "3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FRONTEND_URL", "https://play.example.com")
	t.Setenv("TEXTWORLD_URL", "http://engine:9000/")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.True(t, cfg.LLMConfigured())
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
	assert.Equal(t, time.Minute, cfg.SessionTimeout)
	assert.Equal(t, 3, cfg.MaxSessions)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "http://engine:9000", cfg.TextWorldURL)
	assert.Equal(t, "https://play.example.com", cfg.CORSOrigins[len(cfg.CORSOrigins)-1])
	assert.Len(t, cfg.CORSOrigins, len(defaultCORSOrigins)+1)
}

func TestFromViper_ProviderSelectsCredential(t *testing.T) {
	tests := []struct {
		provider  string
		env       map[string]string
		wantKey   string
		wantModel string
	}{
		{"gemini", map[string]string{}, "gemini-key", "gemini-2.5-flash"},
		{"openai", map[string]string{}, "openai-key", "gpt-4o-mini"},
		{"Anthropic", map[string]string{}, "anthropic-key", "claude-3-5-haiku-latest"},
		{"openai", map[string]string{"OPENAI_MODEL": "gpt-4.1"}, "openai-key", "gpt-4.1"},
		{"anthropic", map[string]string{"GEMINI_MODEL": "gemini-pro"}, "anthropic-key", "claude-3-5-haiku-latest"},
	}
	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.wantModel, func(t *testing.T) {
			t.Setenv("LLM_PROVIDER", tt.provider)
			t.Setenv("GEMINI_API_KEY", "gemini-key")
			t.Setenv("OPENAI_API_KEY", "openai-key")
			t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := FromViper(newViper())
			require.NoError(t, err)
			assert.Equal(t, strings.ToLower(tt.provider), cfg.LLMProvider)
			assert.Equal(t, tt.wantKey, cfg.LLMAPIKey)
			assert.Equal(t, tt.wantModel, cfg.LLMModel)
		})
	}
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown provider", "LLM_PROVIDER", "ollama"},
		{"zero max sessions", "MAX_SESSIONS", "0"},
		{"zero timeout", "GEMINI_TIMEOUT", "0"},
		{"zero max steps", "DEFAULT_MAX_STEPS", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := FromViper(newViper())
			assert.Error(t, err)
		})
	}
}

func TestCORSOrigins(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, corsOrigins(" a, ,b ", ""))
	assert.Equal(t, []string{"a", "c"}, corsOrigins("a", " c "))
	assert.Nil(t, corsOrigins("", ""))
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ADVISOR_TEST_VALUE=from-file\n"), 0o600))
	t.Setenv("ADVISOR_TEST_VALUE", "")
	os.Unsetenv("ADVISOR_TEST_VALUE")

	err := loadEnvFiles([]string{filepath.Join(dir, "missing.env"), path})
	require.NoError(t, err)
	assert.Equal(t, "from-file", os.Getenv("ADVISOR_TEST_VALUE"))
}
