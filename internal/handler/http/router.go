package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Bobby-coder/CodeNation/internal/service"
	"github.com/Bobby-coder/CodeNation/internal/session"
	"github.com/Bobby-coder/CodeNation/pkg/health"
	"github.com/Bobby-coder/CodeNation/pkg/middleware"
)

// NewRouter creates a chi router with all routes registered.
func NewRouter(
	userService *service.UserService,
	sessions *session.Manager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsConfig))
	r.Use(middleware.Tracing("codenation"))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("codenation"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(userService, sessions, logger)
	userHandler := NewUserHandler(userService, logger)
	adminHandler := NewAdminHandler(userService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/activation", authHandler.Activate)
		r.Post("/login", authHandler.Login)
		r.Post("/social-auth", authHandler.SocialAuth)
		r.Get("/refresh", authHandler.Refresh)
		r.Post("/reset-password", authHandler.ResetPasswordLink)
		r.Put("/update-password", authHandler.ResetPassword)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(Authenticated(sessions, logger))

			r.Get("/logout", authHandler.Logout)
			r.Get("/me", userHandler.Me)
			r.Put("/update-user-info", userHandler.UpdateInfo)
			r.Put("/update-user-password", userHandler.UpdatePassword)
			r.Put("/update-user-profile-picture", userHandler.UpdateAvatar)

			// Admin-only endpoints
			r.Group(func(r chi.Router) {
				r.Use(RequireRole(logger, "admin"))

				r.Get("/all-users", adminHandler.ListUsers)
				r.Put("/update-role", adminHandler.UpdateRole)
				r.Delete("/delete-user/{id}", adminHandler.DeleteUser)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, response{
			Success: false,
			Message: fmt.Sprintf("Route %s not found", r.URL.Path),
		})
	})

	return r
}
