package validate

import (
	"fmt"

	"relic-ledger/internal/core/domain"

	"github.com/go-playground/validator/v10"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates the `validate` tags on an input struct and converts
// the first failure into a domain validation error.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	if fields, ok := err.(validator.ValidationErrors); ok && len(fields) > 0 {
		f := fields[0]
		return domain.Validationf("field %s failed on %s", f.Field(), f.Tag())
	}
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

// Var validates a single value against a tag expression
func Var(value interface{}, tag string) error {
	if err := v.Var(value, tag); err != nil {
		return domain.Validationf("value failed on %s", tag)
	}
	return nil
}
