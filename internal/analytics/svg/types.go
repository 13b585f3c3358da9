package svg

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Title       string
	Description string
	StrokeColor string
	FillColor   string
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowDots    bool
	TickCount   int
	Format      TickFormat
	// MaxLabels caps the x-axis labels; 0 means DefaultMaxLabels.
	MaxLabels int
	// HighlightLast marks the current period.
	HighlightLast bool
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title        string
	Description  string
	SeriesALabel string
	SeriesBLabel string
	ColorA       string
	ColorB       string
	AxisColor    string
	GridColor    string
	Padding      float64
	TickCount    int
}

// DonutOpts customises the donut chart renderer.
type DonutOpts struct {
	Title       string
	Description string
	Colors      []string
	LabelColor  string
	// Thickness is the ring width as a fraction of the radius.
	Thickness float64
}

// Palette cycles through these fills when DonutOpts.Colors is empty.
var Palette = []string{"#2563eb", "#f97316", "#10b981", "#eab308", "#8b5cf6", "#ef4444", "#14b8a6", "#64748b"}

// Defaults for the analytics charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 240
	DefaultPadding = 24.0
	DefaultTicks   = 6
)
