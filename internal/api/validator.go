package api

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/wys-platform/prices/internal/pkg/constants"
)

type requestValidator struct {
	validate *validator.Validate
}

func NewValidator() echo.Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: v}
}

func (rv *requestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", constants.ErrInvalidInput, err)
	}
	return newValidationError(ve)
}

// validationError lists the problems per request field.
type validationError struct {
	problems map[string][]string
}

func newValidationError(ve validator.ValidationErrors) *validationError {
	problems := map[string][]string{}
	for _, fe := range ve {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}

		switch fe.Tag() {
		case "required":
			problems[field] = append(problems[field], "This field is required")
		case "gt", "gte":
			problems[field] = append(problems[field], "Value must be "+fe.Tag()+" "+fe.Param())
		default:
			problems[field] = append(problems[field], "Invalid value provided")
		}
	}
	return &validationError{problems: problems}
}

func (e *validationError) Error() string {
	return fmt.Sprintf("invalid fields: %s", strings.Join(slices.Sorted(maps.Keys(e.problems)), ", "))
}

func (e *validationError) Unwrap() error {
	return constants.ErrInvalidInput
}
