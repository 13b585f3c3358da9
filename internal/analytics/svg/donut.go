package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Donut renders a ring chart of the shares of values. Zero slices are
// skipped from the ring but kept in the legend.
func Donut(width, height int, values []float64, labels []string, opts DonutOpts) (template.HTML, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("svg: values required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match values")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	thickness := opts.Thickness
	if thickness <= 0 || thickness >= 1 {
		thickness = 0.4
	}
	colors := opts.Colors
	if len(colors) == 0 {
		colors = Palette
	}
	labelColor := fallback(opts.LabelColor, "#475569")

	total := 0.0
	for _, v := range values {
		if v < 0 {
			return "", fmt.Errorf("svg: negative value %v", v)
		}
		total += v
	}

	cy := float64(height) / 2
	radius := cy - DefaultPadding/2
	if radius <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	cx := radius + DefaultPadding/2
	inner := radius * (1 - thickness)

	titleID := makeID(opts.Title, "donut-title")
	descID := makeID(opts.Title, "donut-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Biểu đồ tròn"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Tỷ lệ theo nhóm"))))

	if almostEqual(total, 0) {
		b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"#e2e8f0\" stroke-width=\"%.2f\"></circle>", cx, cy, (radius+inner)/2, radius-inner))
	} else {
		angle := -math.Pi / 2
		for i, v := range values {
			if v <= 0 {
				continue
			}
			sweep := v / total * 2 * math.Pi
			color := colors[i%len(colors)]
			label := template.HTMLEscapeString(labels[i])
			if almostEqual(sweep, 2*math.Pi) {
				// a single full slice cannot be drawn as one arc
				b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.2f\" aria-label=\"%s\"></circle>", cx, cy, (radius+inner)/2, color, radius-inner, label))
				break
			}
			b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"%s\" aria-label=\"%s\"></path>", arcPath(cx, cy, radius, inner, angle, angle+sweep), color, label))
			angle += sweep
		}
	}

	legendX := cx + radius + 24
	rowHeight := 16.0
	legendY := cy - rowHeight*float64(len(labels))/2 + 10
	for i, label := range labels {
		y := legendY + float64(i)*rowHeight
		share := 0.0
		if total > 0 {
			share = values[i] / total * 100
		}
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", legendX, y-9, colors[i%len(colors)]))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"start\">%s (%s, %.0f%%)</text>", legendX+16, y, labelColor, template.HTMLEscapeString(label), formatTick(values[i]), share))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func arcPath(cx, cy, outer, inner, from, to float64) string {
	large := 0
	if to-from > math.Pi {
		large = 1
	}
	x0, y0 := polar(cx, cy, outer, from)
	x1, y1 := polar(cx, cy, outer, to)
	x2, y2 := polar(cx, cy, inner, to)
	x3, y3 := polar(cx, cy, inner, from)
	return fmt.Sprintf("M%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 0 %.2f %.2f Z",
		x0, y0, outer, outer, large, x1, y1, x2, y2, inner, inner, large, x3, y3)
}

func polar(cx, cy, r, angle float64) (float64, float64) {
	return cx + r*math.Cos(angle), cy + r*math.Sin(angle)
}
