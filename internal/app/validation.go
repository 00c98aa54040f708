package app

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"scholarship_admin/internal/domain/errs"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput maps struct tag failures onto the engine's error kinds:
// absent fields are ErrMissingRequiredField, everything else ErrInvalidInput.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_without":
			return fmt.Errorf("%w: %s", errs.ErrMissingRequiredField, fe.Field())
		}
	}
	fe := verrs[0]
	return fmt.Errorf("%w: %s failed '%s' check", errs.ErrInvalidInput, fe.Field(), fe.Tag())
}

// pagination bounds
const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Page is one slice of a listing.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func normalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit, (page - 1) * limit
}
