package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/newhope/newhope-admin/internal/analytics"
	"github.com/newhope/newhope-admin/internal/orders"
)

// WriteDashboardCSV serialises every dashboard panel as panel,label,value
// rows. Amounts are plain integers in dong so spreadsheets can sum them.
func WriteDashboardCSV(w io.Writer, d analytics.Dashboard) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Panel", "Label", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{analytics.PanelKPIs, "users", strconv.FormatInt(d.KPIs.Users, 10)},
		{analytics.PanelKPIs, "ordersToday", strconv.Itoa(d.KPIs.OrdersToday)},
		{analytics.PanelKPIs, "products", strconv.Itoa(d.KPIs.Products)},
		{analytics.PanelKPIs, "promotions", strconv.Itoa(d.KPIs.Promotions)},
		{analytics.PanelKPIs, "monthRevenue", formatAmount(d.KPIs.MonthRevenue)},
	}
	records = appendCounts(records, analytics.PanelOrdersByMonth, d.OrdersByMonth)
	for _, p := range d.RevenueByMonth {
		records = append(records, []string{analytics.PanelRevenueByMonth, p.Label, formatAmount(p.Value)})
	}
	records = appendCounts(records, analytics.PanelOrdersByDay, d.OrdersByDay)
	records = appendCounts(records, analytics.PanelTopServices, d.TopServices)
	records = appendCounts(records, analytics.PanelStatus, analytics.Relabel(d.Status, statusLabel))
	records = appendCounts(records, analytics.PanelCategories, d.Categories)
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteBucketsCSV emits an ad-hoc order series.
func WriteBucketsCSV(w io.Writer, series analytics.Series[analytics.BucketTotals]) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Period", "Orders", "Revenue"}); err != nil {
		return err
	}
	for _, p := range series {
		if err := writer.Write([]string{p.Label, strconv.Itoa(p.Value.Count), formatAmount(p.Value.Revenue)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func appendCounts(records [][]string, panel string, s analytics.Series[int]) [][]string {
	for _, p := range s {
		records = append(records, []string{panel, p.Label, strconv.Itoa(p.Value)})
	}
	return records
}

func statusLabel(raw string) string {
	return orders.Status(raw).Label()
}

func formatAmount(d decimal.Decimal) string {
	return d.Round(0).String()
}
