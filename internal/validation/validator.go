// Package validation validates request structs with go-playground/validator.
//
// A field left at its zero value fails `required`; that is how an
// incomplete form is detected, so 0 is never an accepted measurement for
// a required field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed rule
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// RequestValidationError collects every failed rule of one struct
type RequestValidationError struct {
	Fields []FieldError
}

func (e *RequestValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// Missing reports whether any required field was left unset
func (e *RequestValidationError) Missing() bool {
	for _, f := range e.Fields {
		if f.Tag == "required" {
			return true
		}
	}
	return false
}

// MissingFields returns the names of unset required fields
func (e *RequestValidationError) MissingFields() []string {
	var out []string
	for _, f := range e.Fields {
		if f.Tag == "required" {
			out = append(out, f.Field)
		}
	}
	return out
}

// GetValidator returns the shared validator. Field names in errors are the
// JSON names.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct returns nil or a *RequestValidationError
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &RequestValidationError{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	fields := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translate(fe),
		}
	}
	return &RequestValidationError{Fields: fields}
}

var withParam = map[string]string{
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
	"oneof": "%s must be one of: %s",
	"max":   "%s must be at most %s",
	"min":   "%s must be at least %s",
}

func translate(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return fmt.Sprintf("%s is required", fe.Field())
	}
	if tmpl, ok := withParam[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
