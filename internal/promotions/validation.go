package promotions

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/newhope/newhope-admin/internal/shared"
)

var hundred = decimal.NewFromInt(100)

// Form is the promotion editor payload.
type Form struct {
	Code    string `form:"code" validate:"required,max=50"`
	Type    string `form:"type" validate:"required,oneof=* -"`
	Value   string `form:"value" validate:"required,numeric"`
	Total   string `form:"condition.total" validate:"omitempty,numeric"`
	Product string `form:"condition.product" validate:"max=128"`
}

// Promotion converts the form into a document.
func (f Form) Promotion() Promotion {
	return Promotion{
		Code: strings.TrimSpace(f.Code),
		Condition: Condition{
			Total:   shared.ParseAmount(f.Total),
			Product: strings.TrimSpace(f.Product),
		},
		Type:  Kind(strings.TrimSpace(f.Type)),
		Value: shared.ParseAmount(f.Value),
	}
}

// FormFrom fills the editor with a stored promotion.
func FormFrom(p Promotion) Form {
	f := Form{Code: p.Code, Type: string(p.Type), Value: p.Value.String(), Product: p.Condition.Product}
	if p.Condition.HasTotal() {
		f.Total = p.Condition.Total.String()
	}
	return f
}

// ValidateForm runs tag rules and then the document rules.
func ValidateForm(v *validator.Validate, f Form) shared.ValidationErrors {
	errs := shared.ValidateStruct(v, f)
	for field, msg := range Validate(f.Promotion()) {
		errs.Add(field, msg)
	}
	return errs
}

// Validate applies the creation rules: a code, a known type, a non-negative
// value, percentages within [0, 100] and at least one condition.
func Validate(p Promotion) shared.ValidationErrors {
	errs := shared.ValidationErrors{}
	if strings.TrimSpace(p.Code) == "" {
		errs.Add("code", "bắt buộc")
	}
	switch p.Type {
	case KindPercent, KindFlat:
	default:
		errs.Add("type", "phải là * hoặc -")
	}
	switch {
	case !p.Value.Valid:
		errs.Add("value", "phải là số")
	case p.Value.Value.IsNegative():
		errs.Add("value", "không được âm")
	case p.Type == KindPercent && p.Value.Value.GreaterThan(hundred):
		errs.Add("value", "giảm theo phần trăm không thể vượt quá 100%")
	}
	if p.Condition.Total.Valid && p.Condition.Total.Value.IsNegative() {
		errs.Add("condition.total", "không được âm")
	}
	if p.Condition.Empty() {
		errs.Add("condition", "cần ít nhất một điều kiện (tổng tiền hoặc sản phẩm áp dụng)")
	}
	return errs
}
