package ui

import (
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/newhope/newhope-admin/internal/analytics"
	"github.com/newhope/newhope-admin/internal/analytics/svg"
	"github.com/newhope/newhope-admin/internal/orders"
	"github.com/newhope/newhope-admin/internal/shared"
)

// KPICard is one headline number.
type KPICard struct {
	Label string
	Value string
}

// Row is a labelled value shown beside a chart.
type Row struct {
	Label string
	Value string
}

// Chart pairs a rendered SVG with its data table. SVG is empty when the
// panel has nothing to draw.
type Chart struct {
	Title string
	SVG   template.HTML
	Rows  []Row
}

// DashboardViewModel combines all dashboard data for rendering.
type DashboardViewModel struct {
	GeneratedAt    time.Time
	KPIs           []KPICard
	Notices        []analytics.Notice
	OrdersByMonth  Chart
	RevenueByMonth Chart
	OrdersByDay    Chart
	TopServices    Chart
	Status         Chart
	Categories     Chart
}

// LineRenderer abstracts SVG line chart rendering for the dashboard.
type LineRenderer interface {
	Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error)
}

// BarRenderer abstracts SVG bar chart rendering for the dashboard.
type BarRenderer interface {
	Bars(width, height int, seriesA, seriesB []float64, labels []string, opts svg.BarOpts) (template.HTML, error)
}

// DonutRenderer abstracts SVG donut chart rendering for the dashboard.
type DonutRenderer interface {
	Donut(width, height int, values []float64, labels []string, opts svg.DonutOpts) (template.HTML, error)
}

// Renderers groups the chart renderers.
type Renderers struct {
	Line  LineRenderer
	Bar   BarRenderer
	Donut DonutRenderer
}

// StatusLabel maps a status key to its display name.
func StatusLabel(raw string) string {
	return orders.Status(raw).Label()
}

// CategoryLabel maps the unclassified bucket to its display name.
func CategoryLabel(raw string) string {
	if raw == analytics.UnclassifiedLabel {
		return "Chưa phân loại"
	}
	return raw
}

// distinctNotices keeps the first notice per message; one failed fetch
// reports every panel it feeds.
func distinctNotices(in []analytics.Notice) []analytics.Notice {
	seen := make(map[string]bool, len(in))
	out := make([]analytics.Notice, 0, len(in))
	for _, n := range in {
		if seen[n.Message] {
			continue
		}
		seen[n.Message] = true
		out = append(out, n)
	}
	return out
}

// BuildDashboard converts a dashboard into its view model.
func BuildDashboard(d analytics.Dashboard, r Renderers) (DashboardViewModel, error) {
	if r.Line == nil || r.Bar == nil || r.Donut == nil {
		return DashboardViewModel{}, fmt.Errorf("svg renderer missing")
	}
	vm := DashboardViewModel{
		GeneratedAt: d.GeneratedAt,
		Notices:     distinctNotices(d.Notices),
		KPIs: []KPICard{
			{Label: "Người dùng", Value: shared.FormatCount(d.KPIs.Users)},
			{Label: "Đơn hàng hôm nay", Value: shared.FormatCount(int64(d.KPIs.OrdersToday))},
			{Label: "Sản phẩm", Value: shared.FormatCount(int64(d.KPIs.Products))},
			{Label: "Khuyến mãi", Value: shared.FormatCount(int64(d.KPIs.Promotions))},
			{Label: "Doanh thu tháng này", Value: shared.FormatVND(d.KPIs.MonthRevenue)},
		},
	}

	var err error
	vm.OrdersByMonth = countChart("Đơn hàng theo tháng", d.OrdersByMonth)
	if len(d.OrdersByMonth) > 0 {
		vm.OrdersByMonth.SVG, err = r.Bar.Bars(svg.DefaultWidth, svg.DefaultHeight, floats(d.OrdersByMonth), nil, d.OrdersByMonth.Labels(), svg.BarOpts{
			Title:        vm.OrdersByMonth.Title,
			Description:  "Số đơn hàng trong 6 tháng gần nhất",
			SeriesALabel: "Đơn hàng",
		})
		if err != nil {
			return DashboardViewModel{}, err
		}
	}

	vm.RevenueByMonth = Chart{Title: "Doanh thu theo tháng", Rows: make([]Row, len(d.RevenueByMonth))}
	for i, p := range d.RevenueByMonth {
		vm.RevenueByMonth.Rows[i] = Row{Label: p.Label, Value: shared.FormatVND(p.Value)}
	}
	if len(d.RevenueByMonth) > 0 {
		values := analytics.Map(d.RevenueByMonth, func(v decimal.Decimal) float64 { return v.InexactFloat64() })
		vm.RevenueByMonth.SVG, err = r.Line.Line(svg.DefaultWidth, svg.DefaultHeight, values.Values(), values.Labels(), svg.LineOpts{
			Title:         vm.RevenueByMonth.Title,
			Description:   "Doanh thu đơn hàng đã hoàn thành",
			ShowDots:      true,
			Format:        svg.TickVND,
			HighlightLast: true,
		})
		if err != nil {
			return DashboardViewModel{}, err
		}
	}

	vm.OrdersByDay = countChart("Đơn hàng 30 ngày qua", d.OrdersByDay)
	if len(d.OrdersByDay) > 0 {
		vm.OrdersByDay.SVG, err = r.Line.Line(svg.DefaultWidth, svg.DefaultHeight, floats(d.OrdersByDay), d.OrdersByDay.Labels(), svg.LineOpts{
			Title:         vm.OrdersByDay.Title,
			Description:   "Số đơn hàng mỗi ngày",
			HighlightLast: true,
		})
		if err != nil {
			return DashboardViewModel{}, err
		}
	}

	vm.TopServices = countChart("Dịch vụ bán chạy", d.TopServices)
	if len(d.TopServices) > 0 {
		vm.TopServices.SVG, err = r.Bar.Bars(svg.DefaultWidth, svg.DefaultHeight, floats(d.TopServices), nil, d.TopServices.Labels(), svg.BarOpts{
			Title:        vm.TopServices.Title,
			Description:  "Dịch vụ được đặt nhiều nhất",
			SeriesALabel: "Số lượng",
		})
		if err != nil {
			return DashboardViewModel{}, err
		}
	}

	status := analytics.Relabel(d.Status, StatusLabel)
	vm.Status = countChart("Trạng thái đơn hàng", status)
	if len(status) > 0 {
		vm.Status.SVG, err = r.Donut.Donut(svg.DefaultWidth, svg.DefaultHeight, floats(status), status.Labels(), svg.DonutOpts{
			Title:       vm.Status.Title,
			Description: "Phân bố đơn hàng theo trạng thái",
		})
		if err != nil {
			return DashboardViewModel{}, err
		}
	}

	cats := analytics.Relabel(d.Categories, CategoryLabel)
	vm.Categories = countChart("Sản phẩm theo danh mục", cats)
	if len(cats) > 0 {
		vm.Categories.SVG, err = r.Donut.Donut(svg.DefaultWidth, svg.DefaultHeight, floats(cats), cats.Labels(), svg.DonutOpts{
			Title:       vm.Categories.Title,
			Description: "Số sản phẩm trong mỗi danh mục",
		})
		if err != nil {
			return DashboardViewModel{}, err
		}
	}
	return vm, nil
}

func countChart(title string, s analytics.Series[int]) Chart {
	rows := make([]Row, len(s))
	for i, p := range s {
		rows[i] = Row{Label: p.Label, Value: shared.FormatCount(int64(p.Value))}
	}
	return Chart{Title: title, Rows: rows}
}

func floats(s analytics.Series[int]) []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = float64(p.Value)
	}
	return out
}
