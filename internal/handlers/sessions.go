package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jwebster45206/textworld-advisor/internal/game"
	"github.com/jwebster45206/textworld-advisor/internal/services/events"
	"github.com/jwebster45206/textworld-advisor/internal/storage"
)

// SessionHandler serves session inspection and deletion under /sessions/{id}.
type SessionHandler struct {
	store   storage.Store
	adapter *game.Adapter
	events  events.Publisher
	logger  *slog.Logger
}

func NewSessionHandler(store storage.Store, adapter *game.Adapter, pub events.Publisher, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		store:   store,
		adapter: adapter,
		events:  pub,
		logger:  logger,
	}
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	gs, err := h.adapter.Lookup(id)
	if err != nil {
		h.logger.Warn("Failed to look up session", "session_id", id, "error", err)
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, gs)
}

func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	history, err := h.adapter.History(id)
	if err != nil {
		h.logger.Warn("Failed to read session history", "session_id", id, "error", err)
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, history)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.store.Delete(id) {
		writeFailure(w, h.logger, storage.ErrSessionNotFound)
		return
	}

	publish(r.Context(), h.events, h.logger, events.Event{
		Type:      events.EventTypeSessionDeleted,
		SessionID: id,
	})
	w.WriteHeader(http.StatusNoContent)
}
