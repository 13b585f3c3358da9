package products

import (
	"strings"

	"github.com/newhope/newhope-admin/internal/shared"
)

// Product is a sellable service. Type holds the category label.
type Product struct {
	ID    string        `json:"id,omitempty"`
	Title string        `json:"title"`
	Price shared.Amount `json:"price"`
	Image string        `json:"image,omitempty"`
	Type  string        `json:"type"`
	// Create records the admin that created the product.
	Create string `json:"create,omitempty"`
}

// Category returns the trimmed category label.
func (p Product) Category() string {
	return strings.TrimSpace(p.Type)
}

// Option is a priced variant stored under Services/{id}/Option.
type Option struct {
	ID         string        `json:"-"`
	OptionName string        `json:"OptionName"`
	Price      shared.Amount `json:"Price"`
}
