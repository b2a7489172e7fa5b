package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/cbl-backend/internal/domain/errs"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	// Field values are stored trimmed, so whitespace alone is blank.
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// validateInput runs struct tags and turns failures into a validation error
// whose details name the offending json fields.
func validateInput(op string, in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Wrap(errs.CodeValidation, op, err)
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fmt.Sprintf("%s:%s", fieldPath(fe), fe.Tag()))
	}
	return errs.WithDetails(errs.CodeValidation, op, "invalid input", details)
}

// validateSlice validates every element of a list payload.
func validateSlice[T any](op string, items []T) error {
	for i := range items {
		if err := validateInput(op, &items[i]); err != nil {
			details := errs.DetailsOf(err)
			for j := range details {
				details[j] = fmt.Sprintf("[%d].%s", i, details[j])
			}
			return errs.WithDetails(errs.CodeValidation, op, "invalid input", details)
		}
	}
	return nil
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}
