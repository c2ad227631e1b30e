package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/textworld-advisor/internal/advisor"
	"github.com/jwebster45206/textworld-advisor/internal/services/events"
	"github.com/jwebster45206/textworld-advisor/pkg/state"
)

// SuggestHandler serves /gemini/suggest-action. It only uses the request
// body and never reads the session store.
type SuggestHandler struct {
	advisor *advisor.Advisor
	events  events.Publisher
	logger  *slog.Logger
}

func NewSuggestHandler(adv *advisor.Advisor, pub events.Publisher, logger *slog.Logger) *SuggestHandler {
	return &SuggestHandler{
		advisor: adv,
		events:  pub,
		logger:  logger,
	}
}

func (h *SuggestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req state.SuggestActionRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.logger.Warn("Invalid suggest request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest, err.Error())
		return
	}

	in := advisor.SuggestInput{
		Observation:      req.Observation,
		AvailableActions: req.AvailableActions,
		Score:            req.Score,
	}
	if req.UserInstruction != nil {
		in.UserInstruction = *req.UserInstruction
	}

	suggestion, err := h.advisor.Suggest(r.Context(), in)
	if err != nil {
		h.logger.Error("Failed to suggest action", "session_id", req.SessionID, "error", err)
		if errors.Is(err, advisor.ErrNoActions) {
			writeError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest, err.Error())
			return
		}
		writeFailure(w, h.logger, err)
		return
	}

	h.logger.Info("Action suggested",
		"session_id", req.SessionID,
		"action", suggestion.SuggestedAction,
		"is_fallback", suggestion.IsFallback)
	publish(r.Context(), h.events, h.logger, events.Event{
		Type:      events.EventTypeActionSuggested,
		SessionID: req.SessionID,
		Data: map[string]any{
			"action":      suggestion.SuggestedAction,
			"is_fallback": suggestion.IsFallback,
		},
	})

	writeJSON(w, h.logger, http.StatusOK, suggestion)
}
