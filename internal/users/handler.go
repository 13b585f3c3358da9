package users

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/newhope/newhope-admin/internal/shared"
	"github.com/newhope/newhope-admin/internal/view"
)

const basePath = "/users"

// Handler manages user management endpoints.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	facilities shared.ChoiceSource
	pages      *view.Responder
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, facilities shared.ChoiceSource, pages *view.Responder) *Handler {
	return &Handler{logger: logger, service: service, facilities: facilities, pages: pages}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
	r.Get("/new", h.showCreateUserForm)
	r.Post("/", h.createUser)
	r.Get("/{email}/edit", h.showEditUserForm)
	r.Post("/{email}", h.updateUser)
	r.Post("/{email}/delete", h.deleteUser)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Role: q.Get("role"), Search: q.Get("search")}
	users, err := h.service.ListUsers(r.Context(), filter)
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		h.pages.Page(w, r, "pages/users/list.html", "Người dùng", map[string]any{"Errors": map[string]string{"general": shared.UserSafeMessage(err)}}, http.StatusInternalServerError)
		return
	}
	p := shared.PaginationFromQuery(q, len(users))
	keep := url.Values{}
	if filter.Role != "" {
		keep.Set("role", filter.Role)
	}
	if filter.Search != "" {
		keep.Set("search", filter.Search)
	}
	h.pages.Page(w, r, "pages/users/list.html", "Người dùng", map[string]any{
		"Users":      shared.Paginate(users, p),
		"Filter":     filter,
		"Pagination": p,
		"Query":      keep.Encode(),
	}, http.StatusOK)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, email string, form Form, errs shared.ValidationErrors, status int) {
	action := basePath
	if email != "" {
		action = basePath + "/" + url.PathEscape(email)
	}
	var facilities []shared.Choice
	if h.facilities != nil {
		var err error
		if facilities, err = h.facilities.Choices(r.Context()); err != nil {
			h.logger.Warn("load facilities", slog.Any("error", err))
		}
	}
	h.pages.Page(w, r, "pages/users/form.html", "Người dùng", map[string]any{
		"Form":       form,
		"Errors":     errs,
		"Action":     action,
		"Editing":    email != "",
		"Facilities": facilities,
		"Roles":      []string{shared.RoleCustomer, shared.RoleStaff},
	}, status)
}

func (h *Handler) showCreateUserForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "", Form{Role: shared.RoleCustomer}, nil, http.StatusOK)
}

func userForm(r *http.Request) (Form, error) {
	if err := r.ParseForm(); err != nil {
		return Form{}, err
	}
	return Form{
		FullName: r.PostFormValue("fullName"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Phone:    r.PostFormValue("phone"),
		Address:  r.PostFormValue("address"),
		Role:     r.PostFormValue("role"),
		Base:     r.PostFormValue("base"),
	}, nil
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	form, err := userForm(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if _, err := h.service.Create(r.Context(), form); err != nil {
		form.Password = ""
		h.failForm(w, r, "", form, err)
		return
	}
	h.pages.Redirect(w, r, basePath, "success", "Thêm người dùng thành công")
}

func (h *Handler) showEditUserForm(w http.ResponseWriter, r *http.Request) {
	email := emailParam(r)
	u, err := h.service.Get(r.Context(), email)
	if err != nil {
		h.pages.Fail(w, r, basePath, "get user", err)
		return
	}
	h.renderForm(w, r, u.Email, formFrom(u), nil, http.StatusOK)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	email := emailParam(r)
	form, err := userForm(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.Update(r.Context(), email, form); err != nil {
		form.Password = ""
		form.Email = email
		h.failForm(w, r, email, form, err)
		return
	}
	h.pages.Redirect(w, r, basePath, "success", "Cập nhật thông tin thành công")
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), emailParam(r)); err != nil {
		h.pages.Fail(w, r, basePath, "delete user", err)
		return
	}
	h.pages.Redirect(w, r, basePath, "success", "Đã xoá người dùng")
}

func (h *Handler) failForm(w http.ResponseWriter, r *http.Request, email string, form Form, err error) {
	var errs shared.ValidationErrors
	if errors.As(err, &errs) {
		h.renderForm(w, r, email, form, errs, http.StatusUnprocessableEntity)
		return
	}
	h.pages.Fail(w, r, basePath, "save user", err)
}

// emailParam decodes the path segment; templates escape "@" as %40.
func emailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	if email, err := url.PathUnescape(raw); err == nil {
		return email
	}
	return raw
}
