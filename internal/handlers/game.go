package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/textworld-advisor/internal/game"
	"github.com/jwebster45206/textworld-advisor/internal/services/events"
	"github.com/jwebster45206/textworld-advisor/internal/storage"
	"github.com/jwebster45206/textworld-advisor/pkg/state"
)

// GameHandler serves /reset and /step.
type GameHandler struct {
	store   storage.Store
	adapter *game.Adapter
	events  events.Publisher
	logger  *slog.Logger
}

func NewGameHandler(store storage.Store, adapter *game.Adapter, pub events.Publisher, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		store:   store,
		adapter: adapter,
		events:  pub,
		logger:  logger,
	}
}

// Reset creates a session and starts the requested game in it.
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req state.ResetRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.logger.Warn("Invalid reset request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest, err.Error())
		return
	}

	sessionID, err := h.store.Create(req.GameID)
	if err != nil {
		h.logger.Error("Failed to create session", "game_id", req.GameID, "error", err)
		writeFailure(w, h.logger, err)
		return
	}

	gs, err := h.adapter.Initialize(r.Context(), sessionID, req.GameID)
	if err != nil {
		h.store.Delete(sessionID)
		h.logger.Error("Failed to initialize game",
			"session_id", sessionID,
			"game_id", req.GameID,
			"error", err)
		writeFailure(w, h.logger, err)
		return
	}

	h.logger.Info("Game started",
		"session_id", sessionID,
		"game_id", req.GameID,
		"actions", len(gs.AvailableActions))
	publish(r.Context(), h.events, h.logger, events.Event{
		Type:      events.EventTypeSessionStarted,
		SessionID: sessionID,
		Data:      map[string]any{"game_id": req.GameID},
	})

	writeJSON(w, h.logger, http.StatusOK, gs)
}

// Step executes one action in an existing session.
func (h *GameHandler) Step(w http.ResponseWriter, r *http.Request) {
	var req state.StepRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.logger.Warn("Invalid step request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest, err.Error())
		return
	}

	gs, err := h.adapter.Execute(r.Context(), req.SessionID, req.Action)
	if err != nil {
		h.logger.Error("Failed to execute action",
			"session_id", req.SessionID,
			"action", req.Action,
			"error", err)
		writeFailure(w, h.logger, err)
		return
	}

	h.logger.Info("Action executed",
		"session_id", req.SessionID,
		"action", req.Action,
		"step", gs.CurrentStep,
		"score", gs.Score,
		"done", gs.Done)
	publish(r.Context(), h.events, h.logger, events.Event{
		Type:      events.EventTypeActionExecuted,
		SessionID: req.SessionID,
		Data: map[string]any{
			"action": req.Action,
			"step":   gs.CurrentStep,
			"score":  gs.Score,
			"reward": *gs.Reward,
			"done":   gs.Done,
		},
	})

	writeJSON(w, h.logger, http.StatusOK, gs)
}
