package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/newhope/newhope-admin/internal/platform/httpx"
	"github.com/newhope/newhope-admin/internal/shared"
	"github.com/newhope/newhope-admin/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	tokens         *TokenManager
	pages          *view.Responder
	sessionManager *shared.SessionManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, tokens *TokenManager, pages *view.Responder, sessions *shared.SessionManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		tokens:         tokens,
		pages:          pages,
		sessionManager: sessions,
		validator:      shared.NewValidator(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

// MountAPI registers the token endpoint.
func (h *Handler) MountAPI(r chi.Router) {
	r.Post("/token", h.issueToken)
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors shared.ValidationErrors
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if shared.AuthFromContext(r.Context()).IsAdmin() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.pages.Page(w, r, "pages/login.html", "Đăng nhập", loginPageData{}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	errs := shared.ValidateStruct(h.validator, form)
	if len(errs) == 0 {
		principal, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
		switch {
		case err == nil:
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				sess.SignIn(principal)
				sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Đăng nhập thành công"})
			} else {
				h.logger.Error("session missing during login")
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, shared.ErrNotAdmin):
			h.logger.Info("login rejected", slog.String("email", form.Email), slog.Any("reason", err))
			errs.Add("general", shared.UserSafeMessage(err))
		default:
			h.logger.Error("authenticate", slog.Any("error", err))
			errs.Add("general", shared.UserSafeMessage(err))
		}
	}
	form.Password = ""
	h.pages.Page(w, r, "pages/login.html", "Đăng nhập", loginPageData{Form: form, Errors: errs}, http.StatusBadRequest)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresAt string `json:"expiresAt"`
}

func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	principal, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	token, expires, err := h.tokens.Issue(principal)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{Token: token, TokenType: "Bearer", ExpiresAt: expires.UTC().Format(time.RFC3339)})
}
