package products

import (
	"strings"

	"github.com/newhope/newhope-admin/internal/shared"
)

type ProductForm struct {
	Title string `form:"title" validate:"required,max=200"`
	Price string `form:"price" validate:"required,numeric"`
	Image string `form:"image" validate:"omitempty,url"`
	Type  string `form:"type" validate:"required"`
}

func (f ProductForm) product() Product {
	return Product{
		Title: strings.TrimSpace(f.Title),
		Price: shared.ParseAmount(f.Price),
		Image: strings.TrimSpace(f.Image),
		Type:  strings.TrimSpace(f.Type),
	}
}

func formFrom(p Product) ProductForm {
	return ProductForm{Title: p.Title, Price: p.Price.String(), Image: p.Image, Type: p.Type}
}

type OptionForm struct {
	OptionName string `form:"optionName" validate:"required,max=100"`
	Price      string `form:"price" validate:"required,numeric"`
}

func (f OptionForm) option() Option {
	return Option{OptionName: strings.TrimSpace(f.OptionName), Price: shared.ParseAmount(f.Price)}
}
