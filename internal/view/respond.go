package view

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/newhope/newhope-admin/internal/shared"
)

// Responder renders pages with the session bound CSRF token and flash.
type Responder struct {
	templates *Engine
	csrf      *shared.CSRFManager
	logger    *slog.Logger
}

// NewResponder builds a Responder.
func NewResponder(templates *Engine, csrf *shared.CSRFManager, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{templates: templates, csrf: csrf, logger: logger}
}

// Page renders a full page. Output is buffered so a template error still
// produces a clean 500.
func (rs *Responder) Page(w http.ResponseWriter, r *http.Request, name, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	var token string
	if rs.csrf != nil && sess != nil {
		token, _ = rs.csrf.EnsureToken(r.Context(), sess)
	}
	td := TemplateData{
		Title:       title,
		CSRFToken:   token,
		Flash:       sess.PopFlash(),
		CurrentPath: r.URL.Path,
		Auth:        shared.AuthFromContext(r.Context()),
		Data:        data,
	}
	var buf bytes.Buffer
	if err := rs.templates.templates.ExecuteTemplate(&buf, name, td); err != nil {
		rs.logger.Error("render template", slog.Any("error", err), slog.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Redirect queues a flash message and issues a 303.
func (rs *Responder) Redirect(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && message != "" {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// Fail logs err and redirects with an operator safe message.
func (rs *Responder) Fail(w http.ResponseWriter, r *http.Request, location, action string, err error) {
	rs.logger.Error(action, slog.Any("error", err))
	rs.Redirect(w, r, location, "error", shared.UserSafeMessage(err))
}
