package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Env files are looked up in order; values already in the environment win.
var envFiles = []string{"../.env.local", ".env.local", ".env"}

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
	"http://localhost:5173",
}

type Config struct {
	Port        string
	Environment string
	AppName     string
	LogLevel    slog.Level

	LLMProvider string
	LLMAPIKey   string
	LLMModel    string
	LLMBaseURL  string
	LLMTimeout  time.Duration

	CORSOrigins []string

	SessionTimeout time.Duration
	MaxSessions    int
	SweepInterval  time.Duration

	GamesDirectory  string
	DefaultMaxSteps int
	TextWorldURL    string

	RedisURL string
}

// LLMConfigured reports whether a credential for the selected provider is set.
func (c *Config) LLMConfigured() bool {
	return c.LLMAPIKey != ""
}

// Load reads .env files (if any) and the process environment.
func Load() (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}
	return FromViper(newViper())
}

func loadEnvFiles(files []string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("APP_NAME", "TextWorld × LLM Adventure API")
	v.SetDefault("LOG_LEVEL", "INFO")

	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("GEMINI_TIMEOUT", 30)
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("ANTHROPIC_API_KEY", "")
	v.SetDefault("ANTHROPIC_MODEL", "claude-3-5-haiku-latest")
	v.SetDefault("LLM_BASE_URL", "")

	v.SetDefault("CORS_ORIGINS", strings.Join(defaultCORSOrigins, ","))
	v.SetDefault("FRONTEND_URL", "")

	v.SetDefault("SESSION_TIMEOUT", 3600)
	v.SetDefault("MAX_SESSIONS", 100)
	v.SetDefault("SWEEP_INTERVAL", 300)

	v.SetDefault("GAMES_DIRECTORY", "games")
	v.SetDefault("DEFAULT_MAX_STEPS", 100)
	v.SetDefault("TEXTWORLD_URL", "http://localhost:8001")

	v.SetDefault("REDIS_URL", "")
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:            v.GetString("PORT"),
		Environment:     v.GetString("ENVIRONMENT"),
		AppName:         v.GetString("APP_NAME"),
		LogLevel:        parseLogLevel(v.GetString("LOG_LEVEL")),
		LLMProvider:     strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER"))),
		LLMBaseURL:      v.GetString("LLM_BASE_URL"),
		LLMTimeout:      time.Duration(v.GetInt("GEMINI_TIMEOUT")) * time.Second,
		CORSOrigins:     corsOrigins(v.GetString("CORS_ORIGINS"), v.GetString("FRONTEND_URL")),
		SessionTimeout:  time.Duration(v.GetInt("SESSION_TIMEOUT")) * time.Second,
		MaxSessions:     v.GetInt("MAX_SESSIONS"),
		SweepInterval:   time.Duration(v.GetInt("SWEEP_INTERVAL")) * time.Second,
		GamesDirectory:  v.GetString("GAMES_DIRECTORY"),
		DefaultMaxSteps: v.GetInt("DEFAULT_MAX_STEPS"),
		TextWorldURL:    strings.TrimRight(v.GetString("TEXTWORLD_URL"), "/"),
		RedisURL:        v.GetString("REDIS_URL"),
	}

	switch cfg.LLMProvider {
	case "gemini":
		cfg.LLMAPIKey = v.GetString("GEMINI_API_KEY")
		cfg.LLMModel = v.GetString("GEMINI_MODEL")
	case "openai":
		cfg.LLMAPIKey = v.GetString("OPENAI_API_KEY")
		cfg.LLMModel = v.GetString("OPENAI_MODEL")
	case "anthropic":
		cfg.LLMAPIKey = v.GetString("ANTHROPIC_API_KEY")
		cfg.LLMModel = v.GetString("ANTHROPIC_MODEL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (supported: gemini, openai, anthropic)", c.LLMProvider)
	}
	if c.Port == "" {
		return errors.New("PORT cannot be empty")
	}
	if c.LLMTimeout <= 0 {
		return errors.New("GEMINI_TIMEOUT must be > 0")
	}
	if c.SessionTimeout <= 0 {
		return errors.New("SESSION_TIMEOUT must be > 0")
	}
	if c.MaxSessions <= 0 {
		return errors.New("MAX_SESSIONS must be > 0")
	}
	if c.SweepInterval < 0 {
		return errors.New("SWEEP_INTERVAL cannot be negative")
	}
	if c.GamesDirectory == "" {
		return errors.New("GAMES_DIRECTORY cannot be empty")
	}
	if c.DefaultMaxSteps <= 0 {
		return errors.New("DEFAULT_MAX_STEPS must be > 0")
	}
	return nil
}

// corsOrigins splits the base list and appends the optional extra host.
func corsOrigins(base, extra string) []string {
	var origins []string
	for _, o := range strings.Split(base, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		origins = append(origins, extra)
	}
	return origins
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "critical":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
