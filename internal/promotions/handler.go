package promotions

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/newhope/newhope-admin/internal/platform/httpx"
	"github.com/newhope/newhope-admin/internal/shared"
	"github.com/newhope/newhope-admin/internal/view"
)

const (
	listTemplate = "pages/promotions/list.html"
	formTemplate = "pages/promotions/form.html"
	basePath     = "/promotions"
)

// Handler serves the promotion screens and the evaluate API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	products shared.ChoiceSource
	pages    *view.Responder
}

// NewHandler constructs the handler. products feeds the condition select.
func NewHandler(logger *slog.Logger, service *Service, products shared.ChoiceSource, pages *view.Responder) *Handler {
	return &Handler{logger: logger, service: service, products: products, pages: pages}
}

// MountRoutes registers the HTML routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/new", h.newForm)
	r.Post("/", h.create)
	r.Get("/{id}/edit", h.editForm)
	r.Post("/{id}", h.update)
	r.Post("/{id}/delete", h.delete)
}

// MountAPI registers the JSON routes.
func (h *Handler) MountAPI(r chi.Router) {
	r.Get("/", h.apiList)
	r.Post("/evaluate", h.apiEvaluate)
}

type row struct {
	Promotion
	ProductTitle string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	promos, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list promotions failed", slog.Any("error", err))
		h.pages.Page(w, r, listTemplate, "Khuyến mãi", map[string]any{"Rows": []row{}, "Failed": true}, http.StatusInternalServerError)
		return
	}
	choices := h.productChoices(r)
	rows := make([]row, 0, len(promos))
	for _, p := range promos {
		title := ""
		if p.Condition.HasProduct() {
			title = shared.LabelFor(choices, p.Condition.Product)
		}
		rows = append(rows, row{Promotion: p, ProductTitle: title})
	}
	h.pages.Page(w, r, listTemplate, "Khuyến mãi", map[string]any{"Rows": rows}, http.StatusOK)
}

func (h *Handler) productChoices(r *http.Request) []shared.Choice {
	if h.products == nil {
		return nil
	}
	choices, err := h.products.Choices(r.Context())
	if err != nil {
		h.logger.Warn("load product choices", slog.Any("error", err))
	}
	return choices
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, id string, form Form, errs shared.ValidationErrors, status int) {
	action := basePath
	if id != "" {
		action = basePath + "/" + url.PathEscape(id)
	}
	h.pages.Page(w, r, formTemplate, "Khuyến mãi", map[string]any{
		"Form":     form,
		"Errors":   errs,
		"Action":   action,
		"Editing":  id != "",
		"Products": h.productChoices(r),
		"Kinds":    []Kind{KindPercent, KindFlat},
	}, status)
}

func (h *Handler) newForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "", Form{Type: string(KindPercent)}, nil, http.StatusOK)
}

func parseForm(r *http.Request) (Form, error) {
	if err := r.ParseForm(); err != nil {
		return Form{}, err
	}
	return Form{
		Code:    r.PostFormValue("code"),
		Type:    r.PostFormValue("type"),
		Value:   r.PostFormValue("value"),
		Total:   r.PostFormValue("condition.total"),
		Product: r.PostFormValue("condition.product"),
	}, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if _, err := h.service.Create(r.Context(), form); err != nil {
		h.formError(w, r, "", form, err)
		return
	}
	h.pages.Redirect(w, r, basePath, "success", "Thêm khuyến mãi mới thành công")
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.pages.Fail(w, r, basePath, "get promotion", err)
		return
	}
	h.renderForm(w, r, id, FormFrom(p), nil, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, err := parseForm(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.Update(r.Context(), id, form); err != nil {
		h.formError(w, r, id, form, err)
		return
	}
	h.pages.Redirect(w, r, basePath, "success", "Cập nhật khuyến mãi thành công")
}

func (h *Handler) formError(w http.ResponseWriter, r *http.Request, id string, form Form, err error) {
	var errs shared.ValidationErrors
	if errors.As(err, &errs) {
		h.renderForm(w, r, id, form, errs, http.StatusUnprocessableEntity)
		return
	}
	h.pages.Fail(w, r, basePath, "save promotion", err)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.pages.Fail(w, r, basePath, "delete promotion", err)
		return
	}
	h.pages.Redirect(w, r, basePath, "success", "Đã xoá khuyến mãi")
}

func (h *Handler) apiList(w http.ResponseWriter, r *http.Request) {
	promos, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list promotions failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	type item struct {
		ID string `json:"id"`
		Promotion
	}
	out := make([]item, 0, len(promos))
	for _, p := range promos {
		out = append(out, item{ID: p.ID, Promotion: p})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) apiEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	result, err := h.service.Evaluate(r.Context(), req)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrValidation) {
			h.logger.Error("evaluate promotion failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
