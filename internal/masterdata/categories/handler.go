package categories

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	mdshared "github.com/newhope/newhope-admin/internal/masterdata/shared"
	"github.com/newhope/newhope-admin/internal/shared"
	"github.com/newhope/newhope-admin/internal/view"
)

const basePath = "/categories"

type Handler struct {
	logger  *slog.Logger
	service *Service
	pages   *view.Responder
}

func NewHandler(logger *slog.Logger, service *Service, pages *view.Responder) *Handler {
	return &Handler{logger: logger, service: service, pages: pages}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}", h.Update)
	r.Post("/{id}/delete", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := mdshared.FiltersFromQuery(r.URL.Query())
	categories, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list categories failed", slog.Any("error", err))
		http.Error(w, "Không tải được danh sách thể loại", http.StatusInternalServerError)
		return
	}
	p := filters.Pagination(len(categories))
	h.pages.Page(w, r, "pages/categories/list.html", "Thể loại", map[string]any{
		"Categories": shared.Paginate(categories, p),
		"Filters":    filters,
		"Pagination": p,
		"Query":      filters.Query(),
	}, http.StatusOK)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, id string, form Form, errs shared.ValidationErrors, status int) {
	action := basePath
	if id != "" {
		action = basePath + "/" + url.PathEscape(id)
	}
	h.pages.Page(w, r, "pages/categories/form.html", "Thể loại", map[string]any{
		"Form":    form,
		"Errors":  errs,
		"Action":  action,
		"Editing": id != "",
	}, status)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "", Form{}, nil, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := Form{Type: r.PostFormValue("type")}
	if _, err := h.service.Create(r.Context(), form); err != nil {
		h.failForm(w, r, "", form, err)
		return
	}
	h.pages.Redirect(w, r, basePath, "success", "Thêm thể loại thành công")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.pages.Fail(w, r, basePath, "get category", err)
		return
	}
	h.render(w, r, id, Form{Type: c.Type}, nil, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := Form{Type: r.PostFormValue("type")}
	if err := h.service.Update(r.Context(), id, form); err != nil {
		h.failForm(w, r, id, form, err)
		return
	}
	h.pages.Redirect(w, r, basePath, "success", "Cập nhật thông tin thành công")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.pages.Fail(w, r, basePath, "delete category", err)
		return
	}
	h.pages.Redirect(w, r, basePath, "success", "Đã xoá thể loại")
}

func (h *Handler) failForm(w http.ResponseWriter, r *http.Request, id string, form Form, err error) {
	var errs shared.ValidationErrors
	if errors.As(err, &errs) {
		h.render(w, r, id, form, errs, http.StatusUnprocessableEntity)
		return
	}
	h.pages.Fail(w, r, basePath, "save category", err)
}
