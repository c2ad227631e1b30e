package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jwebster45206/textworld-advisor/internal/advisor"
	"github.com/jwebster45206/textworld-advisor/internal/game"
	"github.com/jwebster45206/textworld-advisor/internal/middleware"
	"github.com/jwebster45206/textworld-advisor/internal/services/events"
	"github.com/jwebster45206/textworld-advisor/internal/storage"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Store       storage.Store
	Game        *game.Adapter
	Advisor     *advisor.Advisor
	Events      events.Publisher
	// Subscriber enables GET /sessions/{id}/events; nil leaves the route unregistered
	Subscriber  events.Subscriber
	AppName     string
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter wires every route and the global middleware.
func NewRouter(d Deps) http.Handler {
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	log := d.Logger

	gameHandler := NewGameHandler(d.Store, d.Game, d.Events, log)
	suggestHandler := NewSuggestHandler(d.Advisor, d.Events, log)
	healthHandler := NewHealthHandler(d.AppName, d.Advisor.Configured(), log)
	sessionHandler := NewSessionHandler(d.Store, d.Game, d.Events, log)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(d.CORSOrigins))

	r.Get("/", healthHandler.Root)
	r.Method(http.MethodGet, "/health", healthHandler)
	r.Method(http.MethodGet, "/healthz", healthHandler)

	r.Post("/reset", gameHandler.Reset)
	r.Post("/step", gameHandler.Step)
	r.Method(http.MethodPost, "/gemini/suggest-action", suggestHandler)

	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", sessionHandler.Get)
		r.Delete("/", sessionHandler.Delete)
		r.Get("/history", sessionHandler.History)
		if d.Subscriber != nil {
			r.Method(http.MethodGet, "/events", NewEventsHandler(d.Subscriber, d.Store, log))
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, log, http.StatusNotFound, "Not found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed", r.Method+" is not supported on "+r.URL.Path)
	})

	return r
}
