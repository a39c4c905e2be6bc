// Package validation provides declarative field constraints for request
// payloads. Handlers describe each field once and collect every violation in
// a single pass, so the caller sees the full list rather than the first
// failure.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Constraint checks a single value and returns a violation message, or ""
// when the value passes.
type Constraint func(value string) string

// Required rejects empty values.
func Required() Constraint {
	return func(value string) string {
		if value == "" {
			return "is required"
		}
		return ""
	}
}

// Length bounds the value's length in bytes, inclusive on both ends.
func Length(min, max int) Constraint {
	return func(value string) string {
		if len(value) < min || len(value) > max {
			return fmt.Sprintf("must be between %d and %d characters", min, max)
		}
		return ""
	}
}

// Email requires a plausible address shape.
func Email() Constraint {
	return func(value string) string {
		if !emailRe.MatchString(value) {
			return "must be a valid email address"
		}
		return ""
	}
}

type FieldCheck struct {
	Name        string
	Value       string
	Constraints []Constraint
}

func Field(name, value string, constraints ...Constraint) FieldCheck {
	return FieldCheck{Name: name, Value: value, Constraints: constraints}
}

// Run evaluates every constraint of every field and returns the accumulated
// violations, or nil when everything passes.
func Run(checks ...FieldCheck) Errors {
	var errs Errors
	for _, check := range checks {
		for _, constraint := range check.Constraints {
			if msg := constraint(check.Value); msg != "" {
				errs = append(errs, FieldError{Field: check.Name, Message: msg})
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
