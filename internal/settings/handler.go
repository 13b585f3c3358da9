package settings

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/newhope/newhope-admin/internal/shared"
	"github.com/newhope/newhope-admin/internal/view"
)

const basePath = "/settings"

// Handler serves the settings screen.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pages   *view.Responder
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, pages *view.Responder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, pages: pages}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Post("/", h.save)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, s Settings, errs shared.ValidationErrors, status int) {
	h.pages.Page(w, r, "pages/settings/form.html", "Cài đặt hệ thống", map[string]any{
		"Settings": s,
		"Days":     s.Days(),
		"Errors":   errs,
	}, status)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Get(r.Context())
	if err != nil {
		h.logger.Error("load settings", slog.Any("error", err))
		h.render(w, r, Defaults(), shared.ValidationErrors{"general": shared.UserSafeMessage(err)}, http.StatusInternalServerError)
		return
	}
	h.render(w, r, s, nil, http.StatusOK)
}

func settingsForm(r *http.Request) (Settings, error) {
	if err := r.ParseForm(); err != nil {
		return Settings{}, err
	}
	s := Settings{BusinessHours: make(map[string]DayHours, len(Weekdays))}
	for _, d := range Weekdays {
		prefix := "businessHours." + d + "."
		s.BusinessHours[d] = DayHours{
			Open:   r.PostFormValue(prefix + "open"),
			Close:  r.PostFormValue(prefix + "close"),
			Closed: r.PostFormValue(prefix+"closed") != "",
		}
	}
	s.ContactInfo = ContactInfo{
		Phone:   r.PostFormValue("contactInfo.phone"),
		Email:   r.PostFormValue("contactInfo.email"),
		Address: r.PostFormValue("contactInfo.address"),
	}
	s.SocialMedia = SocialMedia{
		Facebook:  r.PostFormValue("socialMedia.facebook"),
		Instagram: r.PostFormValue("socialMedia.instagram"),
		Twitter:   r.PostFormValue("socialMedia.twitter"),
	}
	return s, nil
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	s, err := settingsForm(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.Save(r.Context(), s); err != nil {
		var errs shared.ValidationErrors
		if errors.As(err, &errs) {
			h.render(w, r, s, errs, http.StatusUnprocessableEntity)
			return
		}
		h.pages.Fail(w, r, basePath, "save settings", err)
		return
	}
	h.pages.Redirect(w, r, basePath, "success", "Cài đặt đã được lưu thành công!")
}
