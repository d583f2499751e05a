package util

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidate() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		if err := validate.RegisterValidation("maxbytes", maxBytes); err != nil {
			panic(err)
		}
	})
	return validate
}

// maxBytes bounds the utf-8 length of a string. max counts runes, which lets
// multibyte input past limits that are defined in bytes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		panic(errors.Wrapf(err, "bad maxbytes param %q", fl.Param()))
	}
	return len(fl.Field().String()) <= limit
}

// ErrValidation is the cause of every error returned by ValidateStruct.
var ErrValidation = errors.New("validation failed")

type ValidationError struct {
	Messages []string
}

func (v *ValidationError) Error() string {
	return strings.Join(v.Messages, ", ")
}

func (v *ValidationError) Unwrap() error {
	return ErrValidation
}

// ValidateStruct checks the `validate` tags of s and turns failures into
// human readable messages keyed by json field name.
func ValidateStruct(s any) error {
	err := getValidate().Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errors.Wrap(err, "validate struct failed")
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, validationMessage(fieldErr))
	}
	return &ValidationError{Messages: messages}
}

func validationMessage(fieldErr validator.FieldError) string {
	field := fieldErr.Field()
	switch fieldErr.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "please provide a valid " + field
	case "min":
		return field + " must be at least " + fieldErr.Param() + " characters"
	case "max":
		return field + " must be at most " + fieldErr.Param() + " characters"
	case "maxbytes":
		return field + " must be at most " + fieldErr.Param() + " bytes"
	case "oneof":
		return field + " must be one of " + fieldErr.Param()
	default:
		return field + " is invalid"
	}
}
