package client

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct checks a request struct against its validate tags before
// it reaches the wire. Failures come back as a classified validation error
// so callers handle local and remote validation identically.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return AsError(err)
	}

	fieldErrors := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: fe.Field() + " failed validation on the '" + fe.Tag() + "' rule",
		})
	}
	return NewValidationError(fieldErrors)
}
