package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"
)

// TickFormat selects how values are written on the axis and in tooltips.
type TickFormat uint8

const (
	// TickCount writes whole numbers: order counts, quantities.
	TickCount TickFormat = iota
	// TickVND writes đồng amounts with Vietnamese magnitude suffixes.
	TickVND
)

// DefaultMaxLabels caps the x-axis labels drawn by Line.
const DefaultMaxLabels = 12

type linePoint struct {
	x, y  float64
	value float64
	label string
}

// Line renders a responsive SVG line chart for a dashboard time series.
// Labels in 2006-01 or 2006-01-02 form are shown as 06/2024 and 15/06.
// Negative values are drawn on the baseline.
func Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match series")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	// the value axis needs room for "1,5 tr"
	left := padding * 2
	chartWidth := float64(width) - left - padding
	chartHeight := float64(height) - 2*padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	ticks := opts.TickCount
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	_, maxVal := bounds(series)
	top, step, ticks := niceScale(maxVal, ticks, opts.Format == TickCount)

	strokeColor := fallback(opts.StrokeColor, "#2563eb")
	fillColor := fallback(opts.FillColor, "rgba(37,99,235,0.12)")
	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#cbd5f5")
	base := padding + chartHeight

	points := make([]linePoint, len(series))
	for i, value := range series {
		x := left + chartWidth/2
		if len(series) > 1 {
			x = left + float64(i)*chartWidth/float64(len(series)-1)
		}
		points[i] = linePoint{
			x:     x,
			y:     base - math.Max(value, 0)/top*chartHeight,
			value: value,
			label: axisLabel(labels[i]),
		}
	}

	titleID := makeID(opts.Title, "line-title")
	descID := makeID(opts.Title, "line-desc")

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, width, height, titleID, descID)
	fmt.Fprintf(&b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(fallback(opts.Title, "Biểu đồ đường")))
	fmt.Fprintf(&b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(fallback(opts.Description, "Dữ liệu theo thời gian")))

	for i := 0; i <= ticks; i++ {
		value := step * float64(i)
		y := base - value/top*chartHeight
		fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4" aria-hidden="true"></line>`, left, y, left+chartWidth, y, gridColor)
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`, left-6, y+4, axisColor, template.HTMLEscapeString(opts.Format.format(value)))
	}

	fmt.Fprintf(&b, `<g stroke="%s" aria-label="Trục">`, axisColor)
	fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, left, padding, left, base)
	fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, left, base, left+chartWidth, base)
	b.WriteString("</g>")

	var path strings.Builder
	for i, p := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		} else {
			path.WriteByte(' ')
		}
		fmt.Fprintf(&path, "%s%.2f %.2f", cmd, p.x, p.y)
	}
	if fillColor != "" {
		first, last := points[0], points[len(points)-1]
		fmt.Fprintf(&b, `<path d="%s L%.2f %.2f L%.2f %.2f Z" fill="%s" stroke="none" aria-hidden="true"></path>`, path.String(), last.x, base, first.x, base, fillColor)
	}
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round"></path>`, path.String(), strokeColor)

	for i, p := range points {
		current := opts.HighlightLast && i == len(points)-1
		if !opts.ShowDots && !current {
			continue
		}
		radius := 3
		if current {
			radius = 5
		}
		fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="%d" fill="%s"><title>%s: %s</title></circle>`,
			p.x, p.y, radius, strokeColor, template.HTMLEscapeString(p.label), template.HTMLEscapeString(opts.Format.format(p.value)))
	}

	every := labelStride(len(points), opts.MaxLabels)
	for i, p := range points {
		if i%every != 0 && i != len(points)-1 {
			continue
		}
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, p.x, base+14, axisColor, template.HTMLEscapeString(p.label))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

// niceScale rounds the axis top up to a 1, 2, 2.5 or 5 multiple so grid lines
// land on values an operator reads at a glance. Whole-number axes never get
// fractional steps.
func niceScale(maxVal float64, ticks int, whole bool) (top, step float64, n int) {
	if maxVal <= 0 || almostEqual(maxVal, 0) {
		return 1, 1, 1
	}
	raw := maxVal / float64(ticks)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step = 10 * mag
	for _, m := range []float64{1, 2, 2.5, 5} {
		if raw <= m*mag {
			step = m * mag
			break
		}
	}
	if whole {
		step = math.Max(1, math.Ceil(step))
	}
	n = int(math.Ceil(maxVal/step - 1e-9))
	if n < 1 {
		n = 1
	}
	return step * float64(n), step, n
}

func (f TickFormat) format(v float64) string {
	if f != TickVND {
		return fmt.Sprintf("%.0f", math.Round(v))
	}
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000_000:
		return decimalComma(v/1_000_000_000) + " tỷ"
	case abs >= 1_000_000:
		return decimalComma(v/1_000_000) + " tr"
	case abs >= 1_000:
		return decimalComma(v/1_000) + "k"
	default:
		return fmt.Sprintf("%.0f", math.Round(v))
	}
}

func decimalComma(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	s = strings.TrimSuffix(s, ".0")
	return strings.Replace(s, ".", ",", 1)
}

func axisLabel(label string) string {
	if t, err := time.Parse("2006-01-02", label); err == nil {
		return t.Format("02/01")
	}
	if t, err := time.Parse("2006-01", label); err == nil {
		return t.Format("01/2006")
	}
	return label
}

func labelStride(n, max int) int {
	if max <= 0 {
		max = DefaultMaxLabels
	}
	if n <= max {
		return 1
	}
	return (n + max - 1) / max
}
