package products

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

const basePath = "/products"

type Handler struct {
	logger     *slog.Logger
	service    *Service
	categories shared.ChoiceSource
	pages      *view.Responder
}

func NewHandler(logger *slog.Logger, service *Service, categories shared.ChoiceSource, pages *view.Responder) *Handler {
	return &Handler{logger: logger, service: service, categories: categories, pages: pages}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}", h.Update)
	r.Post("/{id}/delete", h.Delete)
	r.Get("/{id}/options", h.Options)
	r.Post("/{id}/options", h.AddOption)
	r.Post("/{id}/options/{optionID}", h.UpdateOption)
	r.Post("/{id}/options/{optionID}/delete", h.DeleteOption)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := mdshared.FiltersFromQuery(r.URL.Query())
	products, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products failed", slog.Any("error", err))
		http.Error(w, "Không tải được danh sách sản phẩm", http.StatusInternalServerError)
		return
	}
	p := filters.Pagination(len(products))
	h.pages.Page(w, r, "pages/products/list.html", "Sản phẩm", map[string]any{
		"Products":   shared.Paginate(products, p),
		"Filters":    filters,
		"Pagination": p,
		"Query":      filters.Query(),
	}, http.StatusOK)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, id string, form ProductForm, errs shared.ValidationErrors, status int) {
	action := basePath
	if id != "" {
		action = basePath + "/" + url.PathEscape(id)
	}
	var categories []shared.Choice
	if h.categories != nil {
		var err error
		if categories, err = h.categories.Choices(r.Context()); err != nil {
			h.logger.Warn("load categories", slog.Any("error", err))
		}
	}
	h.pages.Page(w, r, "pages/products/form.html", "Sản phẩm", map[string]any{
		"Form":       form,
		"Errors":     errs,
		"Action":     action,
		"Editing":    id != "",
		"Categories": categories,
	}, status)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "", ProductForm{}, nil, http.StatusOK)
}

func productForm(r *http.Request) (ProductForm, error) {
	if err := r.ParseForm(); err != nil {
		return ProductForm{}, err
	}
	return ProductForm{
		Title: r.PostFormValue("title"),
		Price: r.PostFormValue("price"),
		Image: r.PostFormValue("image"),
		Type:  r.PostFormValue("type"),
	}, nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := productForm(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	auth := shared.AuthFromContext(r.Context())
	if _, err := h.service.Create(r.Context(), form, auth.Email); err != nil {
		h.failForm(w, r, "", form, err)
		return
	}
	h.pages.Redirect(w, r, basePath, "success", "Thêm sản phẩm thành công")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.pages.Fail(w, r, basePath, "get product", err)
		return
	}
	h.render(w, r, id, formFrom(p), nil, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, err := productForm(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.Update(r.Context(), id, form); err != nil {
		h.failForm(w, r, id, form, err)
		return
	}
	h.pages.Redirect(w, r, basePath, "success", "Cập nhật thông tin thành công")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.pages.Fail(w, r, basePath, "delete product", err)
		return
	}
	h.pages.Redirect(w, r, basePath, "success", "Đã xoá sản phẩm")
}

func (h *Handler) failForm(w http.ResponseWriter, r *http.Request, id string, form ProductForm, err error) {
	var errs shared.ValidationErrors
	if errors.As(err, &errs) {
		h.render(w, r, id, form, errs, http.StatusUnprocessableEntity)
		return
	}
	h.pages.Fail(w, r, basePath, "save product", err)
}

func (h *Handler) renderOptions(w http.ResponseWriter, r *http.Request, product Product, form OptionForm, errs shared.ValidationErrors, status int) {
	opts, err := h.service.Options(r.Context(), product.ID)
	if err != nil {
		h.pages.Fail(w, r, basePath, "list options", err)
		return
	}
	h.pages.Page(w, r, "pages/products/options.html", "Tuỳ chọn sản phẩm", map[string]any{
		"Product": product,
		"Options": opts,
		"Form":    form,
		"Errors":  errs,
	}, status)
}

func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.pages.Fail(w, r, basePath, "get product", err)
		return
	}
	h.renderOptions(w, r, product, OptionForm{}, nil, http.StatusOK)
}

func optionForm(r *http.Request) (OptionForm, error) {
	if err := r.ParseForm(); err != nil {
		return OptionForm{}, err
	}
	return OptionForm{OptionName: r.PostFormValue("optionName"), Price: r.PostFormValue("price")}, nil
}

func optionsPath(id string) string {
	return basePath + "/" + url.PathEscape(id) + "/options"
}

func (h *Handler) AddOption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, err := optionForm(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if _, err := h.service.AddOption(r.Context(), id, form); err != nil {
		h.failOption(w, r, id, form, err)
		return
	}
	h.pages.Redirect(w, r, optionsPath(id), "success", "Thêm option thành công")
}

func (h *Handler) UpdateOption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, err := optionForm(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.UpdateOption(r.Context(), id, chi.URLParam(r, "optionID"), form); err != nil {
		h.failOption(w, r, id, form, err)
		return
	}
	h.pages.Redirect(w, r, optionsPath(id), "success", "Cập nhật option thành công")
}

func (h *Handler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteOption(r.Context(), id, chi.URLParam(r, "optionID")); err != nil {
		h.pages.Fail(w, r, optionsPath(id), "delete option", err)
		return
	}
	h.pages.Redirect(w, r, optionsPath(id), "success", "Xoá option thành công")
}

func (h *Handler) failOption(w http.ResponseWriter, r *http.Request, id string, form OptionForm, err error) {
	var errs shared.ValidationErrors
	if errors.As(err, &errs) {
		product, getErr := h.service.Get(r.Context(), id)
		if getErr == nil {
			h.renderOptions(w, r, product, form, errs, http.StatusUnprocessableEntity)
			return
		}
		err = getErr
	}
	h.pages.Fail(w, r, optionsPath(id), "save option", err)
}
