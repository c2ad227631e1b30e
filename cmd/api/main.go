package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/textworld-advisor/internal/advisor"
	"github.com/jwebster45206/textworld-advisor/internal/config"
	"github.com/jwebster45206/textworld-advisor/internal/game"
	"github.com/jwebster45206/textworld-advisor/internal/handlers"
	"github.com/jwebster45206/textworld-advisor/internal/logger"
	"github.com/jwebster45206/textworld-advisor/internal/services"
	"github.com/jwebster45206/textworld-advisor/internal/services/events"
	"github.com/jwebster45206/textworld-advisor/internal/storage"
)

const envCloseTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting TextWorld advisor API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.LLMModel,
		"llm_configured", cfg.LLMConfigured())

	llmService := newLLMService(cfg, log)

	engine := services.NewTextWorldClient(cfg.TextWorldURL, log)

	store := storage.NewMemoryStore(storage.MemoryStoreOptions{
		Timeout:     cfg.SessionTimeout,
		MaxSessions: cfg.MaxSessions,
		OnEvict: func(sess storage.Session) {
			if sess.Env == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), envCloseTimeout)
			defer cancel()
			if err := sess.Env.Close(ctx); err != nil {
				logger.WithSession(log, sess.ID).Warn("Failed to close game environment", "error", err)
			}
		},
	}, log)

	adapter := game.NewAdapter(store, engine, game.AdapterOptions{
		GamesDir: cfg.GamesDirectory,
		MaxSteps: cfg.DefaultMaxSteps,
	}, log)

	adv := advisor.New(llmService, advisor.Options{Timeout: cfg.LLMTimeout}, log)

	var (
		publisher  events.Publisher = events.Noop{}
		subscriber events.Subscriber
	)
	if cfg.RedisURL != "" {
		dialCtx, dialCancel := context.WithTimeout(context.Background(), 10*time.Second)
		broadcaster, err := events.Dial(dialCtx, cfg.RedisURL, log)
		dialCancel()
		if err != nil {
			log.Error("Failed to connect to Redis; audit events disabled", "error", err)
		} else {
			publisher = broadcaster
			subscriber = broadcaster
			log.Info("Audit events enabled", "channel", events.AllEventsChannel)
		}
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sweeperDone := storage.StartSweeper(sweepCtx, store, cfg.SweepInterval, log)

	handler := handlers.NewRouter(handlers.Deps{
		Store:       store,
		Game:        adapter,
		Advisor:     adv,
		Events:      publisher,
		Subscriber:  subscriber,
		AppName:     cfg.AppName,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
	})

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	stopSweeper()
	<-sweeperDone

	if err := publisher.Close(); err != nil {
		log.Error("Error closing event publisher", "error", err)
	}

	log.Info("Server exited")
}

// newLLMService returns nil when no credential is set; the advisor then
// falls back to random actions.
func newLLMService(cfg *config.Config, log *slog.Logger) services.LLMService {
	if !cfg.LLMConfigured() {
		log.Warn("No LLM API key configured; suggestions will be random", "provider", cfg.LLMProvider)
		return nil
	}

	switch cfg.LLMProvider {
	case "openai":
		log.Info("Using OpenAI LLM provider")
		return services.NewOpenAIService("openai", cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMBaseURL, log)
	case "anthropic":
		log.Info("Using Anthropic LLM provider")
		return services.NewAnthropicService(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMBaseURL, log)
	default:
		log.Info("Using Gemini LLM provider")
		return services.NewGeminiService(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMBaseURL, log)
	}
}
