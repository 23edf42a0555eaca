// Package validator accumulates field-level validation errors before any
// business logic runs.
package validator

import (
	"regexp"
	"strings"
)

var emailRX = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// Validator holds a map of field names to their validation error messages.
type Validator struct {
	Errors map[string]string
}

// New creates an empty Validator
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if no field failed validation
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// Check records message for field when ok is false. The first failure per
// field wins.
func (v *Validator) Check(ok bool, field, message string) {
	if ok {
		return
	}
	if _, exists := v.Errors[field]; !exists {
		v.Errors[field] = message
	}
}

// NotBlank reports whether value contains non-whitespace characters
func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

// ValidEmail reports whether value looks like an email address
func ValidEmail(value string) bool {
	return emailRX.MatchString(value)
}

// LengthBetween reports whether value's length is within [min, max]
func LengthBetween(value string, min, max int) bool {
	return len(value) >= min && len(value) <= max
}
