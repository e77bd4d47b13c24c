/**
 * @description
 * This file sets up the HTTP router using the go-chi/chi router. It defines
 * the API routes, applies middleware for logging, CORS, and authentication,
 * and maps the routes to their corresponding handler functions.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/madaldho/sub-scribe-light/internal/config"
	"github.com/madaldho/sub-scribe-light/internal/domain"
)

// NewRouter creates a new Chi router and registers all routes.
func NewRouter(h *Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Subscription tracker is healthy"))
	})

	// Protected routes that require authentication
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.JWTSecret))

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/", h.handleListSubscriptions)
			r.Post("/", h.handleCreateSubscription)
			r.Get("/{id}", h.handleGetSubscription)
			r.Put("/{id}", h.handleUpdateSubscription)
			r.Delete("/{id}", h.handleDeleteSubscription)
			r.Post("/{id}/pay", h.handleRecordPayment)
			r.Post("/{id}/pause", h.transitionHandler(domain.ActionPause))
			r.Post("/{id}/resume", h.transitionHandler(domain.ActionResume))
			r.Post("/{id}/cancel", h.transitionHandler(domain.ActionCancel))
			r.Get("/{id}/payments", h.handleListPayments)
		})

		r.Get("/audit-log", h.handleListAuditLog)
		r.Get("/preferences", h.handleGetPreferences)
		r.Put("/preferences", h.handleUpdatePreferences)

		r.Route("/payment-methods", func(r chi.Router) {
			r.Get("/", h.handleListPaymentMethods)
			r.Post("/", h.handleCreatePaymentMethod)
			r.Delete("/{id}", h.handleDeletePaymentMethod)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.handleListNotifications)
			r.Post("/{id}/read", h.handleMarkNotificationRead)
			r.Delete("/{id}", h.handleDeleteNotification)
		})

		r.Get("/analytics/summary", h.handleSpendSummary)
	})

	// Internal job triggers, guarded by the shared API key
	r.Group(func(r chi.Router) {
		r.Use(InternalAuthMiddleware(cfg.InternalAPIKey))

		r.Post("/internal/jobs/check-upcoming", h.handleCheckUpcoming)
		r.Post("/internal/jobs/refresh-rates", h.handleRefreshRates)
	})

	return r
}
