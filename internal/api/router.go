package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/bookline/bookline/internal/booking"
)

type RouterConfig struct {
	Service             *booking.Service
	PgPool              *pgxpool.Pool
	Redis               *redis.Client
	Env                 string
	Version             string
	DefaultSlotDuration int
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Tenant-scoped endpoints; the caller's tenant arrives as X-Tenant-ID.
	r.Route("/api", func(r chi.Router) {
		r.Post("/appointments", createAppointmentHandler(cfg.Service))
		r.Post("/appointments/block", blockTimeHandler(cfg.Service))
		r.Put("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Service))
		r.Get("/availability/slots", availableSlotsHandler(cfg.Service, cfg.DefaultSlotDuration))

		// Public booking surface for unauthenticated visitors
		r.Route("/public", func(r chi.Router) {
			r.Get("/tenants/{slug}", tenantBySlugHandler(cfg.Service))
			r.Get("/{tenantID}/availability/slots", publicSlotsHandler(cfg.Service))
			r.Post("/{tenantID}/appointments/guest", guestAppointmentHandler(cfg.Service))
		})
	})

	return r
}
