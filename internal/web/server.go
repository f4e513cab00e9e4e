package web

import (
    "io"
    "log/slog"
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/jaminalder/tictactoe-bots/internal/app"
    "github.com/jaminalder/tictactoe-bots/internal/bot"
    "github.com/jaminalder/tictactoe-bots/internal/logging"
)

// Option configures the HTTP server.
type Option func(*handlers)

// WithLogger sets the request and handler logger.
func WithLogger(l *slog.Logger) Option { return func(h *handlers) { h.log = l } }

// WithBot sets the move picker behind POST /api/move.
func WithBot(b *bot.Bot) Option { return func(h *handlers) { h.bot = b } }

// WithDefaultDifficulty preselects a tier on the index page and in the API.
func WithDefaultDifficulty(d bot.Difficulty) Option { return func(h *handlers) { h.difficulty = d } }

// WithPingInterval sets the idle WebSocket ping interval.
func WithPingInterval(d time.Duration) Option { return func(h *handlers) { h.ping = d } }

// NewServer wires routes and returns an http.Handler.
func NewServer(s *app.Service, opts ...Option) http.Handler {
    h := &handlers{
        svc:        s,
        bot:        bot.New(),
        tpl:        loadTemplates(),
        log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
        difficulty: bot.Medium,
        ping:       30 * time.Second,
    }
    for _, o := range opts {
        o(h)
    }

    r := chi.NewRouter()
    r.Use(middleware.RequestID)
    r.Use(logging.Requests(h.log))
    r.Use(middleware.Recoverer)

    r.Get("/", h.index)
    r.Get("/healthz", h.healthz)
    r.Post("/api/move", h.apiMove)
    r.Post("/game", h.create)
    r.Route("/game/{id}", func(r chi.Router) {
        r.Get("/", h.view)
        r.Post("/join", h.join)
        r.Post("/play", h.play)
        r.Post("/rematch", h.rematch)
        r.Get("/events", h.events)
        r.Get("/ws", h.ws)
    })
    return r
}
