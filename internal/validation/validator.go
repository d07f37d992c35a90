// Package validation checks service inputs with go-playground/validator and
// reports failures as domain validation errors keyed by JSON field path.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/listenupapp/recipe-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that names fields by their JSON tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "":
			return fld.Name
		case "-":
			return ""
		default:
			return name
		}
	})

	// decimal2 rejects amounts with more than two decimal places.
	_ = v.RegisterValidation("decimal2", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.Float64 && fl.Field().Kind() != reflect.Float32 {
			return false
		}
		f := fl.Field().Float() * 100
		return math.Abs(f-math.Round(f)) < 1e-6
	})

	return &Validator{v: v}
}

// Validate validates a struct. Failures come back as a CodeValidation
// error whose Details is an errors.FieldErrors.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	details := domainerrors.FieldErrors{}
	for _, e := range verrs {
		details.Add(fieldPath(e), friendlyMessage(e))
	}
	return domainerrors.ValidationWithDetails("validation failed", details)
}

// fieldPath drops the top-level struct name from the namespace:
// "createRecipe.tags[1].name" becomes "tags[1].name".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func friendlyMessage(e validator.FieldError) string {
	isText := e.Kind() == reflect.String

	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "min", "gte":
		if isText {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return "must be greater than or equal to " + e.Param()
	case "max", "lte":
		if isText {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return "must be less than or equal to " + e.Param()
	case "len":
		return fmt.Sprintf("must be exactly %s characters", e.Param())
	case "gt":
		return "must be greater than " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	case "decimal2":
		return "must have no more than 2 decimal places"
	case "dive":
		return "is invalid"
	default:
		return "is invalid"
	}
}
