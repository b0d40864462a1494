package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sjpiano/paytrack/internal/application/reconcile"
	"github.com/sjpiano/paytrack/internal/config"
	"github.com/sjpiano/paytrack/internal/transport/http/handler"
	appmiddleware "github.com/sjpiano/paytrack/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds the application services the router exposes.
type Deps struct {
	Reconciler reconcile.Service
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if cfg.JWTSecret != "" {
		authMw = appmiddleware.Auth(cfg.JWTSecret)
	} else {
		// Development fallback; the deploy environment always sets a secret.
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// A run fans out to Gmail, DynamoDB, and SMTP; keep triggers scarce.
	runRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	reconH := handler.NewReconciliationHandler(deps.Reconciler)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check", healthH.Ping)

		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.With(runRL.Limit).Post("/reconciliations", reconH.Run)
			r.Get("/reconciliations/latest", reconH.Latest)
		})
	})

	return r
}
