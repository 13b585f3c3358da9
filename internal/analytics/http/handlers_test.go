package analytichttp

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/newhope/newhope-admin/internal/analytics"
	"github.com/newhope/newhope-admin/internal/analytics/export"
	"github.com/newhope/newhope-admin/internal/analytics/svg"
	"github.com/newhope/newhope-admin/internal/analytics/ui"
	"github.com/newhope/newhope-admin/internal/orders"
	"github.com/newhope/newhope-admin/internal/view"
)

type stubService struct {
	dashboard analytics.Dashboard
	err       error
	lastQuery analytics.TimeBucketQuery
}

func (s *stubService) Dashboard(ctx context.Context) (analytics.Dashboard, error) {
	return s.dashboard, s.err
}

func (s *stubService) OrdersSeries(ctx context.Context, q analytics.TimeBucketQuery) (analytics.Series[analytics.BucketTotals], error) {
	s.lastQuery = q
	return analytics.Series[analytics.BucketTotals]{
		{Label: "2024-06", Value: analytics.BucketTotals{Count: 2, Revenue: decimal.NewFromInt(300000)}},
	}, s.err
}

func (s *stubService) Location() *time.Location { return time.UTC }

type stubPDF struct {
	data []byte
	err  error
	last export.DashboardPayload
}

func (s *stubPDF) RenderDashboard(ctx context.Context, payload export.DashboardPayload) ([]byte, error) {
	s.last = payload
	if s.data == nil {
		s.data = []byte("%PDF-1.4\n")
	}
	return s.data, s.err
}

type charts struct{}

func (charts) Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error) {
	return svg.Line(width, height, series, labels, opts)
}

func (charts) Bars(width, height int, seriesA, seriesB []float64, labels []string, opts svg.BarOpts) (template.HTML, error) {
	return svg.Bars(width, height, seriesA, seriesB, labels, opts)
}

func (charts) Donut(width, height int, values []float64, labels []string, opts svg.DonutOpts) (template.HTML, error) {
	return svg.Donut(width, height, values, labels, opts)
}

func sampleDashboard() analytics.Dashboard {
	return analytics.Dashboard{
		GeneratedAt:    time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
		KPIs:           analytics.KPIs{Users: 5, OrdersToday: 2, MonthRevenue: decimal.NewFromInt(450000)},
		OrdersByMonth:  analytics.Series[int]{{Label: "2024-05", Value: 1}, {Label: "2024-06", Value: 4}},
		RevenueByMonth: analytics.Series[decimal.Decimal]{{Label: "2024-05", Value: decimal.Zero}, {Label: "2024-06", Value: decimal.NewFromInt(450000)}},
		TopServices:    analytics.Series[int]{{Label: "Phở bò", Value: 3}},
		Status:         analytics.Series[int]{{Label: "new", Value: 2}, {Label: "completed", Value: 2}},
		Categories:     analytics.Series[int]{{Label: "Món nước", Value: 1}},
	}
}

func newTestHandler(t *testing.T, service *stubService, pdf PDFService) http.Handler {
	t.Helper()
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	h := NewHandler(nil, service, view.NewResponder(templates, nil, nil), ui.Renderers{Line: charts{}, Bar: charts{}, Donut: charts{}}, pdf)
	h.WithNow(func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) })
	r := chi.NewRouter()
	h.MountRoutes(r)
	r.Route("/api/v1/analytics", h.MountAPI)
	return r
}

func do(h http.Handler, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestDashboardPage(t *testing.T) {
	h := newTestHandler(t, &stubService{dashboard: sampleDashboard()}, nil)
	rr := do(h, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Doanh thu tháng này", "450.000", "<svg", "Phở bò"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in dashboard", want)
		}
	}
}

func TestDashboardPageShowsNotices(t *testing.T) {
	d := sampleDashboard()
	d.Notices = []analytics.Notice{{Panel: analytics.PanelOrdersByMonth, Message: "Không thể tải dữ liệu đơn hàng"}}
	h := newTestHandler(t, &stubService{dashboard: d}, nil)
	rr := do(h, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Không thể tải dữ liệu đơn hàng") {
		t.Fatalf("expected notice in dashboard")
	}
}

func TestDashboardFailure(t *testing.T) {
	h := newTestHandler(t, &stubService{err: errors.New("boom")}, nil)
	if rr := do(h, "/"); rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if rr := do(h, "/api/v1/analytics/dashboard"); rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 from api, got %d", rr.Code)
	}
}

func TestCSVExport(t *testing.T) {
	h := newTestHandler(t, &stubService{dashboard: sampleDashboard()}, nil)
	rr := do(h, "/dashboard/export.csv")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %s", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "newhope-dashboard-2024-06-15.csv") {
		t.Fatalf("unexpected disposition %s", cd)
	}
	if !strings.Contains(rr.Body.String(), "top-services,Phở bò,3") {
		t.Fatalf("expected top services rows in csv: %s", rr.Body.String())
	}
}

func TestPDFExport(t *testing.T) {
	h := newTestHandler(t, &stubService{dashboard: sampleDashboard()}, nil)
	if rr := do(h, "/dashboard/export.pdf"); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without exporter, got %d", rr.Code)
	}

	pdf := &stubPDF{}
	h = newTestHandler(t, &stubService{dashboard: sampleDashboard()}, pdf)
	rr := do(h, "/dashboard/export.pdf")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %s", ct)
	}
	if pdf.last.Location != "UTC" || len(pdf.last.Dashboard.TopServices) != 1 {
		t.Fatalf("unexpected payload %+v", pdf.last)
	}
}

func TestPanelAPI(t *testing.T) {
	h := newTestHandler(t, &stubService{dashboard: sampleDashboard()}, nil)
	rr := do(h, "/api/v1/analytics/series/status")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Labels []string `json:"labels"`
		Values []int    `json:"values"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Labels) != 2 || resp.Labels[1] != "completed" || resp.Values[1] != 2 {
		t.Fatalf("unexpected status panel %+v", resp)
	}

	if rr := do(h, "/api/v1/analytics/series/nope"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown panel, got %d", rr.Code)
	}
}

func TestPanelAPINoticesScopedToPanel(t *testing.T) {
	d := sampleDashboard()
	d.Notices = []analytics.Notice{
		{Panel: analytics.PanelStatus, Message: "Không thể tải dữ liệu đơn hàng"},
		{Panel: analytics.PanelCategories, Message: "Không thể tải danh mục"},
	}
	h := newTestHandler(t, &stubService{dashboard: d}, nil)

	var resp struct {
		Notices []analytics.Notice `json:"notices"`
	}
	rr := do(h, "/api/v1/analytics/series/status")
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Notices) != 1 || resp.Notices[0].Panel != analytics.PanelStatus {
		t.Fatalf("expected only the status notice, got %+v", resp.Notices)
	}

	resp.Notices = nil
	rr = do(h, "/api/v1/analytics/series/orders-by-day")
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Notices) != 0 {
		t.Fatalf("unexpected notices %+v", resp.Notices)
	}
}

func TestOrdersSeriesAPI(t *testing.T) {
	service := &stubService{}
	h := newTestHandler(t, service, nil)

	rr := do(h, "/api/v1/analytics/orders?unit=day&from=2024-06-01&to=2024-06-10&status=delivered,canceled")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	q := service.lastQuery
	if q.Unit != analytics.Day {
		t.Fatalf("expected day unit, got %v", q.Unit)
	}
	if !q.Start.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", q.Start)
	}
	if !q.End.Equal(time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)) {
		t.Fatalf("to must be inclusive, got %v", q.End)
	}
	if len(q.Statuses) != 2 || q.Statuses[1] != orders.StatusCancelled {
		t.Fatalf("unexpected statuses %v", q.Statuses)
	}
	var resp ordersSeriesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Counts[0] != 2 || !resp.Revenue[0].Equal(decimal.NewFromInt(300000)) {
		t.Fatalf("unexpected response %+v", resp)
	}

	rr = do(h, "/api/v1/analytics/orders")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for default window, got %d", rr.Code)
	}
	if service.lastQuery.Unit != analytics.Month || !service.lastQuery.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected default window %+v", service.lastQuery)
	}

	rr = do(h, "/api/v1/analytics/orders?format=csv")
	if !strings.HasPrefix(rr.Body.String(), "Period,Orders,Revenue") {
		t.Fatalf("expected csv body, got %s", rr.Body.String())
	}
}

func TestOrdersSeriesValidation(t *testing.T) {
	h := newTestHandler(t, &stubService{}, nil)
	for _, target := range []string{
		"/api/v1/analytics/orders?unit=week",
		"/api/v1/analytics/orders?from=2024-07-01&to=2024-06-01",
		"/api/v1/analytics/orders?from=yesterday",
		"/api/v1/analytics/orders?status=refunded",
		"/api/v1/analytics/orders?unit=day&from=2000-01-01&to=2024-01-01",
	} {
		if rr := do(h, target); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rr.Code)
		}
	}
}
