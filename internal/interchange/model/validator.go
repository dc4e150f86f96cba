package model

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once

	personNamePattern = regexp.MustCompile(`^[\p{L}\p{M}][\p{L}\p{M} '’\-]*$`)
	intlPhonePattern  = regexp.MustCompile(`^\+?[0-9 \-().]{7,20}$`)
)

func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report json field names so errors line up with CSV columns
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
			return personNamePattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("intlphone", func(fl validator.FieldLevel) bool {
			v := fl.Field().String()
			return intlPhonePattern.MatchString(v) && countDigits(v) >= 7
		})
	})
	return validate
}

// FormatValidationError converts validator errors to ErrorDetail
// This is a helper for Validate() methods to keep consistent error return types
func FormatValidationError(err error) *ErrorDetail {
	if err == nil {
		return nil
	}

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		e := validationErrors[0]
		return &ErrorDetail{
			Code:    "bad_request",
			Message: "Field validation for '" + e.Field() + "' failed on the '" + e.Tag() + "' tag",
		}
	}

	return &ErrorDetail{
		Code:    "bad_request",
		Message: err.Error(),
	}
}

// ToFieldErrors converts every validator error into a FieldError, keeping
// struct field order.
func ToFieldErrors(err error) FieldErrors {
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{{Field: "", Code: ErrCodeInvalidField, Message: err.Error()}}
	}

	out := make(FieldErrors, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, FieldError{
			Field:   baseFieldName(e.Field()),
			Code:    ErrCodeInvalidField,
			Value:   fmt.Sprint(e.Value()),
			Message: describe(e),
		})
	}
	return out
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// baseFieldName strips dive suffixes: "tags[2]" -> "tags".
func baseFieldName(name string) string {
	if i := strings.IndexByte(name, '['); i > 0 {
		return name[:i]
	}
	return name
}

func describe(e validator.FieldError) string {
	dive := strings.Contains(e.Field(), "[")
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		if e.Kind() == reflect.Slice || e.Kind() == reflect.Map {
			return "must contain at most " + e.Param() + " entries"
		}
		if dive {
			return "each entry must be at most " + e.Param() + " characters"
		}
		return "must be at most " + e.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "personname":
		return "may only contain letters, spaces, hyphens and apostrophes"
	case "intlphone":
		return "must be a valid phone number"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	}
	return "failed on the '" + e.Tag() + "' rule"
}
