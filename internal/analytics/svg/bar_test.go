package svg

import (
	"strings"
	"testing"
)

func TestBarsProducesSVG(t *testing.T) {
	html, err := Bars(420, 220, []float64{5, 3}, nil, []string{"Phở <bò>", "Bún"}, BarOpts{
		Title:        "Dịch vụ bán chạy",
		Description:  "Top dịch vụ",
		SeriesALabel: "Số lượng",
	})
	if err != nil {
		t.Fatalf("bars renderer error: %v", err)
	}
	output := string(html)
	if !strings.HasPrefix(output, "<svg") {
		t.Fatalf("expected svg output, got %s", output)
	}
	if strings.Count(output, "<rect") != 3 {
		t.Fatalf("expected two bars and one legend swatch, got %s", output)
	}
	if !strings.Contains(output, "Phở &lt;bò&gt;") {
		t.Fatalf("expected escaped label")
	}
}

func TestBarsComparesTwoSeries(t *testing.T) {
	html, err := Bars(420, 220, []float64{500, 600}, []float64{300, 320}, []string{"2024-05", "2024-06"}, BarOpts{
		SeriesALabel: "Đơn hàng",
		SeriesBLabel: "Hoàn thành",
	})
	if err != nil {
		t.Fatalf("bars renderer error: %v", err)
	}
	if !strings.Contains(string(html), "Hoàn thành") {
		t.Fatalf("expected legend label")
	}
}
