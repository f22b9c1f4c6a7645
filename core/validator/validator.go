package validator

import (
	"fmt"
	"strings"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult collects field errors. It is rendered as the "error"
// member of a 400 response.
type ValidationResult struct {
	Errors []FieldError `json:"errors"`
}

func NewValidationResult() *ValidationResult {
	return &ValidationResult{Errors: []FieldError{}}
}

func (v *ValidationResult) AddError(field, message string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Message: message})
}

func (v *ValidationResult) HasError() bool {
	return len(v.Errors) > 0
}

func (v *ValidationResult) Error() string {
	parts := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

func (v *ValidationResult) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
}

func (v *ValidationResult) MaxLength(field, value string, max int) {
	if len([]rune(value)) > max {
		v.AddError(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func (v *ValidationResult) OneOf(field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
}
