package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"guestbook/internal/handler"
	"guestbook/internal/identity"
	"guestbook/internal/metrics"
	gbmw "guestbook/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	MessageHandler    *handler.MessageHandler
	ReplyHandler      *handler.ReplyHandler
	AttachmentHandler *handler.AttachmentHandler // nil when blob storage is not configured
	StatsHandler      *handler.StatsHandler
	IdentityHandler   *handler.IdentityHandler
	HealthHandler     *handler.HealthHandler
	EventsHandler     *handler.EventsHandler // nil when the change stream is unavailable
	IdentityStore     identity.Store
	RateLimitRPS      float64
	RateLimitBurst    int
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Instrument)

	r.Get("/health", cfg.HealthHandler.Check)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Everything else knows who the caller claims to be
	r.Group(func(r chi.Router) {
		r.Use(gbmw.Identity(cfg.IdentityStore))

		// Mutations share one per-client limiter
		limited := r.With(gbmw.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

		r.Get("/identity", cfg.IdentityHandler.Get)
		limited.Put("/identity", cfg.IdentityHandler.Set)

		r.Get("/stats", cfg.StatsHandler.Summary)
		r.Get("/stats/activity", cfg.StatsHandler.Activity)

		// Message endpoints
		r.Get("/messages", cfg.MessageHandler.List)
		r.Get("/messages/popular", cfg.MessageHandler.Popular)
		r.Get("/messages/{id}", cfg.MessageHandler.Get)
		limited.Post("/messages", cfg.MessageHandler.Create)
		limited.Patch("/messages/{id}", cfg.MessageHandler.Update)
		limited.Delete("/messages/{id}", cfg.MessageHandler.Delete)
		limited.Post("/messages/{id}/like", cfg.MessageHandler.ToggleLike)

		// Reply endpoints
		r.Get("/messages/{id}/replies", cfg.ReplyHandler.List)
		limited.Post("/messages/{id}/replies", cfg.ReplyHandler.Create)
		limited.Delete("/replies/{id}", cfg.ReplyHandler.Delete)

		if cfg.AttachmentHandler != nil {
			limited.Post("/attachments", cfg.AttachmentHandler.Upload)
			limited.Delete("/attachments", cfg.AttachmentHandler.Delete)
		}

		if cfg.EventsHandler != nil {
			r.Get("/events", cfg.EventsHandler.Stream)
		}
	})

	return r
}
