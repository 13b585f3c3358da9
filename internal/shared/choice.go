package shared

import "context"

// Choice is one entry of a select input.
type Choice struct {
	Value string
	Label string
}

// ChoiceSource supplies select options owned by another screen.
type ChoiceSource interface {
	Choices(ctx context.Context) ([]Choice, error)
}

// LabelFor returns the label of value, or value itself when unknown.
func LabelFor(choices []Choice, value string) string {
	for _, c := range choices {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}
