package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roadcast/roadcast/internal/api/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their query parameter name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("query"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// multiLocationQuery caps the fan-out of GET /v1/weather at 20 names.
type multiLocationQuery struct {
	Locations []string `query:"locations" validate:"required,min=1,max=20,dive,required"`
}

type routeQuery struct {
	Origin      string `query:"origin" validate:"required"`
	Destination string `query:"destination" validate:"required"`
}

type transportForecastQuery struct {
	Days string `query:"days" validate:"omitempty,number"`
}

// fieldErrors converts validator errors into problem field errors.
// Any other error becomes a single unnamed entry.
func fieldErrors(err error) []models.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []models.FieldError{{Message: err.Error()}}
	}

	out := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, models.FieldError{
			Field:   fieldName(fe),
			Message: fieldMessage(fe),
			Code:    strings.ToUpper(fe.Tag()),
		})
	}
	return out
}

// fieldName strips the struct prefix and keeps slice indexes, e.g.
// "locations[2]".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s entries", fe.Param())
	case "number":
		return "must be a whole number"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// splitList splits a comma-separated query value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
