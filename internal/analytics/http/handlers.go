package analytichttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/newhope/newhope-admin/internal/analytics"
	"github.com/newhope/newhope-admin/internal/analytics/export"
	"github.com/newhope/newhope-admin/internal/analytics/ui"
	"github.com/newhope/newhope-admin/internal/orders"
	"github.com/newhope/newhope-admin/internal/platform/httpx"
	"github.com/newhope/newhope-admin/internal/view"
)

const (
	requestTimeout = 5 * time.Second
	// maxBuckets bounds ad-hoc series so a wide daily window cannot
	// allocate without limit.
	maxBuckets = 732
)

// DashboardService defines the dashboard data contract used by the handler.
type DashboardService interface {
	Dashboard(ctx context.Context) (analytics.Dashboard, error)
	OrdersSeries(ctx context.Context, q analytics.TimeBucketQuery) (analytics.Series[analytics.BucketTotals], error)
	Location() *time.Location
}

// PDFService renders dashboard content to PDF bytes.
type PDFService interface {
	RenderDashboard(ctx context.Context, payload export.DashboardPayload) ([]byte, error)
}

// Handler coordinates HTTP requests for the home dashboard.
type Handler struct {
	logger    *slog.Logger
	service   DashboardService
	pages     *view.Responder
	renderers ui.Renderers
	pdf       PDFService
	csvPool   sync.Pool
	now       func() time.Time
}

// NewHandler constructs the analytics HTTP handler. pdf may be nil, in which
// case the PDF export answers 503.
func NewHandler(logger *slog.Logger, service DashboardService, pages *view.Responder, renderers ui.Renderers, pdf PDFService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:    logger,
		service:   service,
		pages:     pages,
		renderers: renderers,
		pdf:       pdf,
		now:       time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	d, err := h.service.Dashboard(ctx)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}
	vm, err := ui.BuildDashboard(d, h.renderers)
	if err != nil {
		h.handleServerError(w, "render charts", err)
		return
	}
	h.pages.Page(w, r, "pages/dashboard.html", "Tổng quan", vm, http.StatusOK)
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		http.Error(w, "Xuất PDF chưa được cấu hình", http.StatusServiceUnavailable)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	d, err := h.service.Dashboard(ctx)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}
	pdfBytes, err := h.pdf.RenderDashboard(ctx, export.DashboardPayload{
		Dashboard: d,
		Location:  h.service.Location().String(),
	})
	if err != nil {
		h.handleServerError(w, "render pdf", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", h.filename("pdf")))
	if _, err := w.Write(pdfBytes); err != nil {
		h.logError("stream pdf", err)
	}
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	d, err := h.service.Dashboard(ctx)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()
	if err := export.WriteDashboardCSV(buf, d); err != nil {
		h.handleServerError(w, "write dashboard csv", err)
		return
	}
	h.streamCSV(w, h.filename("csv"), buf)
}

func (h *Handler) filename(ext string) string {
	return fmt.Sprintf("newhope-dashboard-%s.%s", h.now().In(h.service.Location()).Format("2006-01-02"), ext)
}

func (h *Handler) streamCSV(w http.ResponseWriter, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) apiDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	d, err := h.service.Dashboard(ctx)
	if err != nil {
		h.logError("load dashboard", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

type panelResponse struct {
	Panel   string             `json:"panel"`
	Labels  []string           `json:"labels"`
	Values  any                `json:"values"`
	Notices []analytics.Notice `json:"notices,omitempty"`
}

func (h *Handler) apiPanel(w http.ResponseWriter, r *http.Request) {
	panel := chi.URLParam(r, "panel")
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	d, err := h.service.Dashboard(ctx)
	if err != nil {
		h.logError("load dashboard", err)
		httpx.RespondError(w, err)
		return
	}
	resp := panelResponse{Panel: panel}
	for _, n := range d.Notices {
		if n.Panel == panel {
			resp.Notices = append(resp.Notices, n)
		}
	}
	switch panel {
	case analytics.PanelOrdersByMonth:
		resp.Labels, resp.Values = d.OrdersByMonth.Labels(), d.OrdersByMonth.Values()
	case analytics.PanelRevenueByMonth:
		resp.Labels, resp.Values = d.RevenueByMonth.Labels(), d.RevenueByMonth.Values()
	case analytics.PanelOrdersByDay:
		resp.Labels, resp.Values = d.OrdersByDay.Labels(), d.OrdersByDay.Values()
	case analytics.PanelTopServices:
		resp.Labels, resp.Values = d.TopServices.Labels(), d.TopServices.Values()
	case analytics.PanelStatus:
		resp.Labels, resp.Values = d.Status.Labels(), d.Status.Values()
	case analytics.PanelCategories:
		resp.Labels, resp.Values = d.Categories.Labels(), d.Categories.Values()
	default:
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown panel "+panel)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type ordersSeriesResponse struct {
	Unit    string            `json:"unit"`
	From    string            `json:"from"`
	To      string            `json:"to"`
	Labels  []string          `json:"labels"`
	Counts  []int             `json:"counts"`
	Revenue []decimal.Decimal `json:"revenue"`
}

func (h *Handler) apiOrdersSeries(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseSeriesQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	series, err := h.service.OrdersSeries(ctx, q)
	if err != nil {
		h.logError("orders series", err)
		httpx.RespondError(w, err)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		buf := h.csvPool.Get().(*bytes.Buffer)
		buf.Reset()
		defer func() {
			buf.Reset()
			h.csvPool.Put(buf)
		}()
		if err := export.WriteBucketsCSV(buf, series); err != nil {
			h.handleServerError(w, "write series csv", err)
			return
		}
		h.streamCSV(w, fmt.Sprintf("newhope-orders-%s.csv", q.Unit), buf)
		return
	}

	layout := "2006-01-02"
	resp := ordersSeriesResponse{
		Unit:    q.Unit.String(),
		From:    q.Start.Format(layout),
		To:      q.End.Format(layout),
		Labels:  series.Labels(),
		Counts:  analytics.Map(series, func(b analytics.BucketTotals) int { return b.Count }).Values(),
		Revenue: analytics.Map(series, func(b analytics.BucketTotals) decimal.Decimal { return b.Revenue }).Values(),
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// parseSeriesQuery reads unit, from, to and status. from and to accept
// YYYY-MM-DD or YYYY-MM and are inclusive calendar bounds. The default
// window is the last six months.
func (h *Handler) parseSeriesQuery(r *http.Request) (analytics.TimeBucketQuery, error) {
	values := r.URL.Query()
	loc := h.service.Location()
	unit, err := analytics.ParseBucketUnit(defaultString(values.Get("unit"), "month"))
	if err != nil {
		return analytics.TimeBucketQuery{}, errors.New("unit must be day or month")
	}
	now := h.now().In(loc)

	end := now
	if raw := strings.TrimSpace(values.Get("to")); raw != "" {
		day, month, err := parseBound(raw, loc)
		if err != nil {
			return analytics.TimeBucketQuery{}, fmt.Errorf("invalid to %q", raw)
		}
		if month {
			end = day.AddDate(0, 1, 0).Add(-time.Nanosecond)
		} else {
			end = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}
	start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -(analytics.MonthsWindow - 1), 0)
	if raw := strings.TrimSpace(values.Get("from")); raw != "" {
		start, _, err = parseBound(raw, loc)
		if err != nil {
			return analytics.TimeBucketQuery{}, fmt.Errorf("invalid from %q", raw)
		}
	}
	if start.After(end) {
		return analytics.TimeBucketQuery{}, errors.New("from must not be after to")
	}
	if analytics.BucketCount(start, end, unit) > maxBuckets {
		return analytics.TimeBucketQuery{}, fmt.Errorf("window exceeds %d buckets", maxBuckets)
	}

	var statuses []orders.Status
	for _, raw := range strings.Split(values.Get("status"), ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		s, known := orders.ParseStatus(raw)
		if !known {
			return analytics.TimeBucketQuery{}, fmt.Errorf("unknown status %q", raw)
		}
		statuses = append(statuses, s)
	}
	return analytics.TimeBucketQuery{Start: start, End: end, Unit: unit, Statuses: statuses, Location: loc}, nil
}

func parseBound(raw string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return t, false, nil
	}
	t, err := time.ParseInLocation("2006-01", raw, loc)
	return t, true, err
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
