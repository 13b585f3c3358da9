package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/newhope/newhope-admin/internal/shared"
	"github.com/newhope/newhope-admin/internal/view"
)

// Handler serves the order screens.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pages   *view.Responder
}

// NewHandler constructs the order handler.
func NewHandler(logger *slog.Logger, service *Service, pages *view.Responder) *Handler {
	return &Handler{logger: logger, service: service, pages: pages}
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.show)
	r.Post("/{id}/status", h.updateStatus)
}

type listPage struct {
	Orders     []Order
	Filter     ListFilter
	Statuses   []Status
	Pagination shared.Pagination
	Query      string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Status: q.Get("status"), Search: q.Get("search")}
	orders, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list orders failed", slog.Any("error", err))
		h.pages.Page(w, r, "pages/orders/list.html", "Đơn hàng", listPage{Filter: filter, Statuses: Vocabulary, Pagination: shared.NewPagination(1, 0, 0)}, http.StatusInternalServerError)
		return
	}
	p := shared.PaginationFromQuery(q, len(orders))
	keep := url.Values{}
	if filter.Status != "" {
		keep.Set("status", filter.Status)
	}
	if filter.Search != "" {
		keep.Set("search", filter.Search)
	}
	h.pages.Page(w, r, "pages/orders/list.html", "Đơn hàng", listPage{
		Orders:     shared.Paginate(orders, p),
		Filter:     filter,
		Statuses:   Vocabulary,
		Pagination: p,
		Query:      keep.Encode(),
	}, http.StatusOK)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, "Không tìm thấy đơn hàng", http.StatusNotFound)
			return
		}
		h.logger.Error("get order failed", slog.Any("error", err), slog.String("id", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.pages.Page(w, r, "pages/orders/detail.html", "Chi tiết đơn hàng", map[string]any{
		"Order":    order,
		"Statuses": Vocabulary,
	}, http.StatusOK)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	status, err := h.service.UpdateStatus(r.Context(), id, r.PostFormValue("state"))
	if err != nil {
		h.pages.Fail(w, r, "/orders/"+url.PathEscape(id), "update order status", err)
		return
	}
	h.pages.Redirect(w, r, "/orders/"+url.PathEscape(id), "success", "Đã cập nhật trạng thái: "+status.Label())
}
