package products

import (
	"context"

	"github.com/newhope/newhope-admin/internal/shared"
)

func (s *Service) validate(ctx context.Context, f ProductForm) (shared.ValidationErrors, error) {
	errs := shared.ValidateStruct(s.validator, f)
	p := f.product()
	if p.Price.Valid && p.Price.Value.IsNegative() {
		errs.Add("price", "không được âm")
	}
	if s.categories != nil && p.Type != "" {
		choices, err := s.categories.Choices(ctx)
		if err != nil {
			return nil, err
		}
		known := false
		for _, c := range choices {
			if c.Value == p.Type {
				known = true
				break
			}
		}
		if !known {
			errs.Add("type", "thể loại không tồn tại")
		}
	}
	return errs, nil
}

func (s *Service) validateOption(f OptionForm) shared.ValidationErrors {
	errs := shared.ValidateStruct(s.validator, f)
	if o := f.option(); o.Price.Valid && o.Price.Value.IsNegative() {
		errs.Add("price", "không được âm")
	}
	return errs
}
