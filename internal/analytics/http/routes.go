package analytichttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/newhope/newhope-admin/internal/shared"
)

// MountRoutes registers the dashboard pages and exports onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/", h.handleDashboard)
	r.Group(func(gr chi.Router) {
		gr.Use(exportLimiter())
		gr.Get("/dashboard/export.pdf", h.handlePDF)
		gr.Get("/dashboard/export.csv", h.handleCSV)
	})
}

// MountAPI registers the JSON series endpoints.
func (h *Handler) MountAPI(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/dashboard", h.apiDashboard)
	r.Get("/series/{panel}", h.apiPanel)
	r.With(exportLimiter()).Get("/orders", h.apiOrdersSeries)
}

func exportLimiter() func(http.Handler) http.Handler {
	return httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)
}

func rateLimitKey(r *http.Request) (string, error) {
	if auth := shared.AuthFromContext(r.Context()); auth.UserID != "" {
		return "user:" + auth.UserID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
