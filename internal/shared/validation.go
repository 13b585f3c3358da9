package shared

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors maps form fields to operator facing messages.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets callers match with errors.Is(err, ErrValidation).
func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Add records a message unless the field already has one.
func (v ValidationErrors) Add(field, message string) {
	if _, exists := v[field]; !exists {
		v[field] = message
	}
}

// OrNil returns nil when no field failed.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// NewValidator returns a validator that reports fields by their form tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateStruct runs validator tags and converts failures to ValidationErrors.
func ValidateStruct(v *validator.Validate, s any) ValidationErrors {
	out := ValidationErrors{}
	err := v.Struct(s)
	if err == nil {
		return out
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out.Add("general", err.Error())
		return out
	}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), describe(fe))
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "bắt buộc"
	case "email":
		return "email không hợp lệ"
	case "url":
		return "đường dẫn không hợp lệ"
	case "gte":
		return fmt.Sprintf("phải lớn hơn hoặc bằng %s", fe.Param())
	case "lte":
		return fmt.Sprintf("phải nhỏ hơn hoặc bằng %s", fe.Param())
	case "min":
		return fmt.Sprintf("tối thiểu %s ký tự", fe.Param())
	case "max":
		return fmt.Sprintf("tối đa %s ký tự", fe.Param())
	case "oneof":
		return fmt.Sprintf("phải là một trong: %s", fe.Param())
	case "datetime":
		return "định dạng thời gian không hợp lệ"
	case "numeric":
		return "phải là số"
	case "latitude":
		return "vĩ độ phải nằm trong khoảng -90 đến 90"
	case "longitude":
		return "kinh độ phải nằm trong khoảng -180 đến 180"
	default:
		return fmt.Sprintf("không hợp lệ (%s)", fe.Tag())
	}
}
