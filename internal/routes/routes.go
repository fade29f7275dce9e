package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/loginwatch/loginwatch/internal/auth"
	"github.com/loginwatch/loginwatch/internal/handlers"
	"github.com/loginwatch/loginwatch/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	recordHandler *handlers.RecordHandler,
	attemptHandler *handlers.AttemptHandler,
	deviceHandler *handlers.DeviceHandler,
	thresholdHandler *handlers.ThresholdHandler,
	tokenManager *auth.TokenManager,
) {
	recordLimit := middleware.DefaultRecordRateLimit()
	adminLimit := middleware.DefaultAdminRateLimit()

	router.Route("/v1", func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))

		// Login backends call record; the rest is admin dashboard surface
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleService, auth.RoleAdmin))
			r.With(middleware.RateLimitByIP(recordLimit)).Post("/logins/record", recordHandler.Record)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))
			r.Use(middleware.RateLimitByIP(adminLimit))

			r.Get("/logins", attemptHandler.List)
			r.Get("/users/{id}/devices", deviceHandler.ListForUser)
			r.Get("/devices", deviceHandler.List)
			r.Post("/devices/{id}/trust", deviceHandler.Trust)
			r.Post("/devices/{id}/untrust", deviceHandler.Untrust)
			r.Get("/thresholds", thresholdHandler.Get)
			r.Put("/thresholds", thresholdHandler.Update)
		})
	})
}
