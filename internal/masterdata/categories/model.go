package categories

// Category is a product category. Products reference it by Type, not by id.
type Category struct {
	ID   string `json:"-"`
	Type string `json:"type"`
}

// Form is the category editor payload.
type Form struct {
	Type string `form:"type" validate:"required,max=100"`
}
