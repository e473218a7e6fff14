// Package validation checks request and domain inputs using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/shelfkeeper/shelfkeeper-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
// It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain validation error listing
// every failing field.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// Field is a single named value checked against a validator tag.
type Field struct {
	Name  string
	Value any
	Tag   string
}

// Fields validates standalone values, as found in partial updates, and
// reports all failures together.
func (v *Validator) Fields(fields ...Field) error {
	details := make(map[string]string)
	for _, f := range fields {
		err := v.v.Var(f.Value, f.Tag)
		if err == nil {
			continue
		}
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}
		details[f.Name] = friendlyMessage(validationErrs[0])
	}
	if len(details) > 0 {
		return domainerrors.ValidationWithDetails("validation failed", details)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

//nolint:gocyclo // Switch statement covering validation tags is intentionally exhaustive.
func friendlyMessage(e validator.FieldError) string {
	unit := ""
	if e.Kind() == reflect.String {
		unit = " characters"
	}

	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s%s", e.Param(), unit)
	case "max":
		return fmt.Sprintf("must not exceed %s%s", e.Param(), unit)
	case "len":
		return fmt.Sprintf("must be exactly %s%s", e.Param(), unit)
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	case "printascii":
		return "must contain only printable ASCII characters"
	default:
		return "is invalid"
	}
}
