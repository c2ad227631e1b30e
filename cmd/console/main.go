package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type ConsoleConfig struct {
	APIBaseURL  string
	GameID      string
	Instruction string
	AutoPlay    bool
	MaxSteps    int
	AutoDelay   time.Duration
	Timeout     time.Duration
	LogFile     string
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &ConsoleConfig{}

	cmd := &cobra.Command{
		Use:           "console",
		Short:         "Play TextWorld games against the advisor API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.APIBaseURL, "api", getEnv("API_BASE_URL", "http://localhost:8000"), "advisor API base URL")
	flags.StringVarP(&cfg.GameID, "game", "g", getEnv("GAME_ID", ""), "game id to start (file name without extension)")
	flags.StringVarP(&cfg.Instruction, "instruction", "i", "", "instruction passed to the advisor with every suggestion")
	flags.BoolVar(&cfg.AutoPlay, "auto", false, "let the advisor play")
	flags.IntVar(&cfg.MaxSteps, "max-steps", 0, "stop auto-play after this many steps (0 uses the server limit)")
	flags.DurationVar(&cfg.AutoDelay, "delay", time.Second, "pause between auto-play steps")
	flags.DurationVar(&cfg.Timeout, "timeout", 60*time.Second, "HTTP timeout per request")
	flags.StringVar(&cfg.LogFile, "log-file", "", "write JSON logs to this file")

	return cmd
}

func run(ctx context.Context, cfg *ConsoleConfig) error {
	if cfg.GameID == "" {
		return errors.New("a game id is required (--game)")
	}

	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer closeLog()

	client := NewAPIClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.Timeout})

	health, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("could not connect to API at %s: %w", cfg.APIBaseURL, err)
	}
	logger.Info("connected", "app_name", health.AppName, "llm_configured", health.GeminiAPIConfigured)

	gs, err := client.Reset(ctx, cfg.GameID)
	if err != nil {
		return err
	}
	logger.Info("game started", "session_id", gs.SessionID, "game_id", cfg.GameID)

	p := tea.NewProgram(NewConsoleUI(cfg, client, gs, health.GeminiAPIConfigured, logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

// newLogger writes to path when set; the TUI owns stdout.
func newLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.NewWithOptions(io.Discard, log.Options{}), func() {}, nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := log.NewWithOptions(file, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	logger.SetFormatter(log.JSONFormatter)
	return logger, func() { _ = file.Close() }, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
