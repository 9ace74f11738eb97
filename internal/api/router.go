package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CaioWing/paddock/internal/api/docs"
	"github.com/CaioWing/paddock/internal/api/management"
	"github.com/CaioWing/paddock/internal/api/middleware"
	"github.com/CaioWing/paddock/internal/api/response"
	"github.com/CaioWing/paddock/internal/auth"
)

type RouterDeps struct {
	Listings       management.ListingReader
	Moderator      management.Moderator
	Audit          management.AuditLister
	Identity       management.Authenticator
	Pages          interface{ Routes(chi.Router) } // optional
	JWTManager     *auth.JWTManager
	CORSOrigins    []string
	PageSize       int
	RateLimitRPS   float64
	RateLimitBurst int
	Logger         *slog.Logger
}

// NewRouter builds the HTTP surface. ctx bounds background work such as rate
// limiter eviction.
func NewRouter(ctx context.Context, deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Unknown verbs on known routes are rejected before authentication.
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Not found")
	})

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Metrics())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/docs/openapi.yaml", docs.Handler())

	listingHandler := management.NewListingHandler(deps.Listings, deps.Moderator, deps.PageSize, deps.Logger)
	auditHandler := management.NewAuditHandler(deps.Audit, deps.PageSize, deps.Logger)
	authHandler := management.NewAuthHandler(deps.Identity, deps.JWTManager, deps.Logger)
	limiter := middleware.NewRateLimiter(ctx, deps.RateLimitRPS, deps.RateLimitBurst)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Use(limiter.Handler)

		r.Post("/auth/login", authHandler.Login)

		// Auth is applied per route so that chi answers 405 first.
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIAuth(deps.JWTManager))

			r.Post("/auth/refresh", authHandler.Refresh)

			r.Get("/listings", listingHandler.List)
			r.Get("/listings/stats", listingHandler.Stats)
			r.Get("/listings/{id}", listingHandler.Get)
			r.Put("/listings/{id}", listingHandler.Update)
			r.Patch("/listings/{id}/status", listingHandler.UpdateStatus)

			r.Get("/audit", auditHandler.List)
		})
	})

	if deps.Pages != nil {
		r.Group(func(r chi.Router) {
			r.Use(limiter.Handler)
			deps.Pages.Routes(r)
		})
	}

	return r
}
