package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/berkayemre/chitchat-notify/internal/api/middleware"
	"github.com/berkayemre/chitchat-notify/internal/handlers"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, auth *middleware.AuthMiddleware) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware first to capture all requests
	r.Use(middleware.Metrics)
	r.Use(middleware.MaxBodySize(32 * 1024))

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Backend callers only; no browser credentials involved.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Content-Type",
			middleware.HeaderCaller, middleware.HeaderNonce,
			middleware.HeaderTimestamp, middleware.HeaderSignature,
		},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes
	r.Get("/health", h.Health)

	// Authenticated routes (require signature)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/stats", h.Stats)
		r.Post("/messages", h.IngestMessage)
		r.Post("/notifications/reaction", h.SendReactionNotification)
		r.Post("/users/{uid}/channels/{channelID}/read", h.ResetUnread)
		r.Get("/users/{uid}/channels/{channelID}/unread", h.GetUnread)
	})

	return r
}
