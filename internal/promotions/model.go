// Package promotions manages discount codes and evaluates them against an
// order subtotal.
package promotions

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/newhope/newhope-admin/internal/shared"
)

// Kind selects how Value is applied.
type Kind string

const (
	// KindPercent takes Value percent of the subtotal.
	KindPercent Kind = "*"
	// KindFlat subtracts Value, capped at the subtotal.
	KindFlat Kind = "-"
)

// Label returns the Vietnamese form label.
func (k Kind) Label() string {
	switch k {
	case KindPercent:
		return "Giảm theo phần trăm (%)"
	case KindFlat:
		return "Giảm trực tiếp (VNĐ)"
	default:
		return string(k)
	}
}

// Condition is the sparse applicability rule of a promotion. Either field
// may be absent; a valid promotion carries at least one.
type Condition struct {
	// Total is the minimum subtotal.
	Total shared.Amount
	// Product is a product id that must be part of the order.
	Product string
}

// HasTotal reports whether a minimum subtotal is set. A stored zero counts
// as absent, like an empty form field.
func (c Condition) HasTotal() bool {
	return c.Total.Valid && c.Total.Value.IsPositive()
}

// HasProduct reports whether a required product is set.
func (c Condition) HasProduct() bool {
	return strings.TrimSpace(c.Product) != ""
}

// Empty reports whether neither condition is present.
func (c Condition) Empty() bool {
	return !c.HasTotal() && !c.HasProduct()
}

// MarshalJSON omits absent conditions.
func (c Condition) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if c.HasTotal() {
		out["total"] = c.Total
	}
	if c.HasProduct() {
		out["product"] = strings.TrimSpace(c.Product)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the condition object. Product ids written as numbers
// are kept as their text; any other shape leaves the condition empty.
func (c *Condition) UnmarshalJSON(data []byte) error {
	*c = Condition{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	var raw struct {
		Total   shared.Amount   `json:"total"`
		Product json.RawMessage `json:"product"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	c.Total = raw.Total
	c.Product = rawText(raw.Product)
	return nil
}

func rawText(data json.RawMessage) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if n, err := strconv.ParseFloat(string(data), 64); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

// Promotion is a document of the Discount collection.
type Promotion struct {
	ID        string        `json:"-"`
	Code      string        `json:"code"`
	Condition Condition     `json:"condition"`
	Type      Kind          `json:"type"`
	Value     shared.Amount `json:"value"`
}

// DisplayValue renders the value with its unit.
func (p Promotion) DisplayValue() string {
	if p.Type == KindPercent {
		return p.Value.String() + "%"
	}
	return shared.FormatVND(p.Value.OrZero())
}
