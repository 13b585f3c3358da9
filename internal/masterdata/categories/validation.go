package categories

import (
	"strings"

	"github.com/newhope/newhope-admin/internal/shared"
)

func (s *Service) validate(f Form) shared.ValidationErrors {
	f.Type = strings.TrimSpace(f.Type)
	return shared.ValidateStruct(s.validator, f)
}
