package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mousaahmad63636/spotlymobile/internal/service"
	"github.com/Mousaahmad63636/spotlymobile/internal/session"
	"github.com/Mousaahmad63636/spotlymobile/pkg/health"
	"github.com/Mousaahmad63636/spotlymobile/pkg/middleware"
)

// NewRouter creates the admin panel router. The panel is meant to bind to
// loopback only; RequireSession is the sole access control on the order
// routes.
func NewRouter(
	auth *service.Auth,
	orders *service.Orders,
	sessions *session.Store,
	healthHandler *health.Handler,
	uploadsURL string,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	sessionHandler := NewSessionHandler(auth, sessions, logger)
	orderHandler := NewOrderHandler(orders, uploadsURL, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/session", sessionHandler.Login)
		r.Get("/session", sessionHandler.Current)
		r.Delete("/session", sessionHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(sessions))

			r.Put("/session/device", sessionHandler.RegisterDevice)

			r.Get("/orders", orderHandler.List)
			r.Post("/orders/refresh", orderHandler.Refresh)
			r.Put("/orders/filter", orderHandler.SetFilter)
			r.Delete("/orders/filter", orderHandler.ClearFilter)
			r.Get("/orders/{id}", orderHandler.Get)
			r.Put("/orders/{id}/status", orderHandler.UpdateStatus)

			r.Get("/dashboard", orderHandler.Dashboard)
		})
	})

	return r
}

// ContentTypeJSON stamps responses as JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
