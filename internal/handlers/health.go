package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/textworld-advisor/pkg/state"
)

type HealthHandler struct {
	appName       string
	llmConfigured bool
	logger        *slog.Logger
}

func NewHealthHandler(appName string, llmConfigured bool, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		appName:       appName,
		llmConfigured: llmConfigured,
		logger:        logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	writeJSON(w, h.logger, http.StatusOK, state.HealthResponse{
		Status:              "ok",
		AppName:             h.appName,
		GeminiAPIConfigured: h.llmConfigured,
	})
}

type RootResponse struct {
	Message string `json:"message"`
	Docs    string `json:"docs"`
	Health  string `json:"health"`
}

// Root serves the welcome document at /.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, RootResponse{
		Message: "Welcome to " + h.appName,
		Docs:    "/docs",
		Health:  "/health",
	})
}
