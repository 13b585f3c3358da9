package export

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/newhope/newhope-admin/internal/analytics"
	"github.com/newhope/newhope-admin/internal/shared"
)

// DashboardPayload is the dashboard snapshot destined for PDF rendering.
type DashboardPayload struct {
	Dashboard analytics.Dashboard
	Location  string
}

// HTMLRenderer converts an HTML document to PDF bytes.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// PDFExporter lays the dashboard out as HTML and hands it to a renderer,
// normally the Gotenberg client.
type PDFExporter struct {
	renderer HTMLRenderer
}

// NewPDFExporter builds an exporter around renderer.
func NewPDFExporter(renderer HTMLRenderer) *PDFExporter {
	return &PDFExporter{renderer: renderer}
}

// RenderDashboard renders payload and returns the PDF bytes.
func (p *PDFExporter) RenderDashboard(ctx context.Context, payload DashboardPayload) ([]byte, error) {
	if p == nil || p.renderer == nil {
		return nil, errors.New("export: pdf renderer not configured")
	}
	html, err := BuildHTML(payload)
	if err != nil {
		return nil, err
	}
	return p.renderer.RenderHTML(ctx, html)
}

type row struct {
	Label string
	Value string
}

type section struct {
	Title string
	Rows  []row
}

var reportTemplate = template.Must(template.New("report").Parse(`<html><head><meta charset="utf-8"><style>
body{font-family:sans-serif;margin:24px;}h1{font-size:20px;}table{width:100%;border-collapse:collapse;margin-bottom:16px;}
th,td{border:1px solid #ddd;padding:6px;text-align:right;}th{text-align:left;background:#f5f5f5;}td.label{text-align:left;}
.notice{color:#b91c1c;}
</style></head><body>
<h1>Báo cáo NewHope – {{.Generated}}</h1>
{{range .Notices}}<p class="notice">{{.Message}}</p>{{end}}
{{range .Sections}}<section><h2>{{.Title}}</h2><table><tbody>
{{range .Rows}}<tr><td class="label">{{.Label}}</td><td>{{.Value}}</td></tr>
{{else}}<tr><td class="label" colspan="2">Không có dữ liệu</td></tr>
{{end}}</tbody></table></section>
{{end}}</body></html>`))

// BuildHTML lays the dashboard out as printable tables.
func BuildHTML(payload DashboardPayload) (string, error) {
	d := payload.Dashboard
	generated := d.GeneratedAt.Format("02/01/2006 15:04")
	if payload.Location != "" {
		generated += " (" + payload.Location + ")"
	}
	sections := []section{
		{Title: "Chỉ số chính", Rows: []row{
			{"Người dùng", shared.FormatCount(d.KPIs.Users)},
			{"Đơn hàng hôm nay", shared.FormatCount(int64(d.KPIs.OrdersToday))},
			{"Sản phẩm", shared.FormatCount(int64(d.KPIs.Products))},
			{"Khuyến mãi", shared.FormatCount(int64(d.KPIs.Promotions))},
			{"Doanh thu tháng này", shared.FormatVND(d.KPIs.MonthRevenue)},
		}},
		{Title: "Đơn hàng theo tháng", Rows: countRows(d.OrdersByMonth)},
		{Title: "Doanh thu theo tháng", Rows: amountRows(d.RevenueByMonth)},
		{Title: "Đơn hàng 30 ngày qua", Rows: countRows(d.OrdersByDay)},
		{Title: "Dịch vụ bán chạy", Rows: countRows(d.TopServices)},
		{Title: "Trạng thái đơn hàng", Rows: countRows(analytics.Relabel(d.Status, statusLabel))},
		{Title: "Sản phẩm theo danh mục", Rows: countRows(analytics.Relabel(d.Categories, categoryLabel))},
	}
	var b strings.Builder
	err := reportTemplate.Execute(&b, map[string]any{
		"Generated": generated,
		"Notices":   d.Notices,
		"Sections":  sections,
	})
	if err != nil {
		return "", fmt.Errorf("export: render html: %w", err)
	}
	return b.String(), nil
}

func countRows(s analytics.Series[int]) []row {
	rows := make([]row, len(s))
	for i, p := range s {
		rows[i] = row{Label: p.Label, Value: shared.FormatCount(int64(p.Value))}
	}
	return rows
}

func amountRows(s analytics.Series[decimal.Decimal]) []row {
	rows := make([]row, len(s))
	for i, p := range s {
		rows[i] = row{Label: p.Label, Value: shared.FormatVND(p.Value)}
	}
	return rows
}

func categoryLabel(raw string) string {
	if raw == analytics.UnclassifiedLabel {
		return "Chưa phân loại"
	}
	return raw
}
