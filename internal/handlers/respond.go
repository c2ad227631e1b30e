package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/textworld-advisor/internal/game"
	"github.com/jwebster45206/textworld-advisor/internal/services/events"
	"github.com/jwebster45206/textworld-advisor/internal/storage"
	"github.com/jwebster45206/textworld-advisor/pkg/state"
)

// Error categories carried in ErrorResponse.Error
const (
	ErrInvalidRequest  = "Invalid request"
	ErrSessionNotFound = "Session not found"
	ErrGameNotFound    = "Game not found"
	ErrGameEngine      = "Game engine error"
	ErrInternal        = "Internal server error"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Error encoding response", "error", err, "status", status)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, category, detail string) {
	writeJSON(w, logger, status, state.ErrorResponse{Error: category, Detail: detail})
}

// writeFailure maps domain errors to status codes. It is the only place that does so.
func writeFailure(w http.ResponseWriter, logger *slog.Logger, err error) {
	var engErr *game.EngineError
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		writeError(w, logger, http.StatusNotFound, ErrSessionNotFound, err.Error())
	case errors.Is(err, game.ErrGameNotFound):
		writeError(w, logger, http.StatusNotFound, ErrGameNotFound, err.Error())
	case errors.As(err, &engErr):
		writeError(w, logger, http.StatusInternalServerError, ErrGameEngine, err.Error())
	default:
		writeError(w, logger, http.StatusInternalServerError, ErrInternal, err.Error())
	}
}

// decodeBody reads a JSON body into v, rejecting unknown trailing data.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: unexpected data after object")
	}
	return nil
}

const publishTimeout = 2 * time.Second

// publish sends an audit event in the background; failures are logged and otherwise ignored.
func publish(ctx context.Context, pub events.Publisher, logger *slog.Logger, ev events.Event) {
	if pub == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		if err := pub.Publish(ctx, ev); err != nil {
			logger.Warn("Failed to publish audit event", "event_type", ev.Type, "error", err)
		}
	}()
}
