// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/newhope/newhope-admin/internal/docstore"
	"github.com/newhope/newhope-admin/internal/shared"
)

// Sentinel errors for the API layer.
var (
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationProblem extends ProblemDetail with field messages.
type ValidationProblem struct {
	ProblemDetail
	Errors map[string]string `json:"errors"`
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var verrs shared.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		JSON(w, http.StatusBadRequest, ValidationProblem{
			ProblemDetail: ProblemDetail{Title: "Validation Failed", Status: http.StatusBadRequest, Detail: verrs.Error()},
			Errors:        verrs,
		})
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, docstore.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate), errors.Is(err, docstore.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrForbidden), errors.Is(err, shared.ErrNotAdmin):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrUnauthorized), errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
