package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	analytichttp "github.com/newhope/newhope-admin/internal/analytics/http"
	"github.com/newhope/newhope-admin/internal/auth"
	"github.com/newhope/newhope-admin/internal/masterdata/categories"
	"github.com/newhope/newhope-admin/internal/masterdata/facilities"
	"github.com/newhope/newhope-admin/internal/masterdata/products"
	"github.com/newhope/newhope-admin/internal/observability"
	"github.com/newhope/newhope-admin/internal/orders"
	"github.com/newhope/newhope-admin/internal/promotions"
	"github.com/newhope/newhope-admin/internal/settings"
	"github.com/newhope/newhope-admin/internal/shared"
	"github.com/newhope/newhope-admin/internal/users"
	"github.com/newhope/newhope-admin/jobs"
	"github.com/newhope/newhope-admin/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Tokens         *auth.TokenManager
	Metrics        *observability.Metrics
	Ready          func(r *http.Request) error

	AuthHandler       *auth.Handler
	AnalyticsHandler  *analytichttp.Handler
	OrdersHandler     *orders.Handler
	ProductsHandler   *products.Handler
	CategoriesHandler *categories.Handler
	FacilitiesHandler *facilities.Handler
	UsersHandler      *users.Handler
	PromotionsHandler *promotions.Handler
	SettingsHandler   *settings.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with the admin defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Ready != nil {
			if err := params.Ready(r); err != nil {
				params.Logger.Warn("health check", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		if params.AnalyticsHandler != nil {
			params.AnalyticsHandler.MountRoutes(r)
		}
		if params.OrdersHandler != nil {
			r.Route("/orders", params.OrdersHandler.MountRoutes)
		}
		if params.ProductsHandler != nil {
			r.Route("/products", params.ProductsHandler.MountRoutes)
		}
		if params.CategoriesHandler != nil {
			r.Route("/categories", params.CategoriesHandler.MountRoutes)
		}
		if params.FacilitiesHandler != nil {
			r.Route("/facilities", params.FacilitiesHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.PromotionsHandler != nil {
			r.Route("/promotions", params.PromotionsHandler.MountRoutes)
		}
		if params.SettingsHandler != nil {
			r.Route("/settings", params.SettingsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		if params.AuthHandler != nil {
			r.Route("/auth", params.AuthHandler.MountAPI)
		}
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAPIAdmin(params.Tokens))
			if params.AnalyticsHandler != nil {
				r.Route("/analytics", params.AnalyticsHandler.MountAPI)
			}
			if params.PromotionsHandler != nil {
				r.Route("/promotions", params.PromotionsHandler.MountAPI)
			}
		})
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
