package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/pratik-mahalle/upscaler/docs"
	"github.com/pratik-mahalle/upscaler/internal/api/handlers"
	"github.com/pratik-mahalle/upscaler/internal/api/middleware"
	"github.com/pratik-mahalle/upscaler/internal/config"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/pkg/metrics"
)

type Handlers struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Upscale *handlers.UpscaleHandler
	Credits *handlers.CreditsHandler
	Images  *handlers.ImageHandler
	Profile *handlers.ProfileHandler
}

// Limiters are the rate limit backends. Nil disables the corresponding limit.
type Limiters struct {
	// General applies to every request, keyed by client IP
	General middleware.Limiter
	// Upscale applies to POST /api/upscale, keyed by user or IP
	Upscale middleware.Limiter
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers, limiters Limiters) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	if cfg.Metrics.Enabled {
		r.Use(metrics.Middleware)
	}
	if limiters.General != nil {
		r.Use(middleware.RateLimit(limiters.General, middleware.IPKey, log))
	}

	// Public routes
	r.Group(func(r chi.Router) {
		// Swagger documentation
		r.Get("/swagger/*", httpSwagger.WrapHandler)

		// Health checks
		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)

		if cfg.Metrics.Enabled {
			r.Handle(cfg.Metrics.Path, metrics.Handler())
		}

		// Auth endpoints
		r.Post("/api/auth/register", h.Auth.Register)
		r.Post("/api/auth/login", h.Auth.Login)
		r.Post("/api/auth/refresh", h.Auth.RefreshToken)
		r.Post("/api/auth/logout", h.Auth.Logout)
	})

	// Routes open to anonymous callers; a valid token pins the caller identity
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuthMiddleware(cfg.Auth.JWTSecret))

		r.Group(func(r chi.Router) {
			if limiters.Upscale != nil {
				r.Use(middleware.RateLimit(limiters.Upscale, middleware.UserOrIPKey, log))
			}
			r.Post("/api/upscale", h.Upscale.Upscale)
		})

		r.Post("/api/credits/deduct", h.Credits.Deduct)
		r.Post("/api/images/save", h.Images.Save)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))

		r.Get("/api/auth/session", h.Auth.Session)
		r.Get("/api/profile", h.Profile.Get)
		r.Get("/api/profile/usage", h.Profile.Usage)
		r.Get("/api/images", h.Images.List)
	})

	return r
}
