package analytics

// Point is one labelled value of a Series.
type Point[V any] struct {
	Label string `json:"label"`
	Value V      `json:"value"`
}

// Series is an ordered list of labelled values, the shape every aggregator
// returns and every chart consumes.
type Series[V any] []Point[V]

// Labels returns the labels in order.
func (s Series[V]) Labels() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Label
	}
	return out
}

// Values returns the values in order.
func (s Series[V]) Values() []V {
	out := make([]V, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Map projects every value through fn, keeping labels.
func Map[V, W any](s Series[V], fn func(V) W) Series[W] {
	out := make(Series[W], len(s))
	for i, p := range s {
		out[i] = Point[W]{Label: p.Label, Value: fn(p.Value)}
	}
	return out
}

// Relabel rewrites every label through fn, keeping values.
func Relabel[V any](s Series[V], fn func(string) string) Series[V] {
	out := make(Series[V], len(s))
	for i, p := range s {
		out[i] = Point[V]{Label: fn(p.Label), Value: p.Value}
	}
	return out
}

// Wire is the JSON shape charts and the series API exchange.
type Wire[V any] struct {
	Labels []string `json:"labels"`
	Values []V      `json:"values"`
}

// ToWire splits s into parallel label and value arrays.
func ToWire[V any](s Series[V]) Wire[V] {
	return Wire[V]{Labels: s.Labels(), Values: s.Values()}
}
