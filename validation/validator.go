package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/appkit/errors"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Rules is implemented by configuration types with constraints struct tags
// cannot express, such as checks across fields. config.Bind runs it after
// tag validation.
type Rules interface {
	Rules(v *Validator)
}

// Validator collects field failures from programmatic rules. Every rule
// runs; Error reports them together.
type Validator struct {
	failures []FieldError
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// Check records a failure for field when ok is false. message is formatted
// with args.
func (v *Validator) Check(ok bool, field, message string, args ...any) *Validator {
	if !ok {
		if len(args) > 0 {
			message = fmt.Sprintf(message, args...)
		}
		v.failures = append(v.failures, FieldError{Field: field, Message: message})
	}
	return v
}

// Required fails when value is blank.
func (v *Validator) Required(field, value string) *Validator {
	return v.Check(strings.TrimSpace(value) != "", field, "is required")
}

// OneOf fails when a non-empty value is not in allowed. Comparison ignores
// case.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	ok := value == "" || slices.ContainsFunc(allowed, func(a string) bool {
		return strings.EqualFold(a, value)
	})
	return v.Check(ok, field, "must be one of: %s", strings.Join(allowed, ", "))
}

// NoSpace fails when value contains whitespace.
func (v *Validator) NoSpace(field, value string) *Validator {
	return v.Check(!strings.ContainsAny(value, " \t\r\n"), field, "must not contain whitespace")
}

// Nested records err from a nested validation under prefix. Field failures
// carried by a Validation error keep their own names, qualified by prefix;
// any other error becomes a single failure of prefix.
func (v *Validator) Nested(prefix string, err error) *Validator {
	if err == nil {
		return v
	}
	if appErr, ok := errors.AsAppError(err); ok {
		if fields, ok := appErr.Details["fields"].([]FieldError); ok {
			for _, f := range fields {
				v.failures = append(v.failures, FieldError{Field: qualify(prefix, f.Field), Message: f.Message})
			}
			return v
		}
	}
	v.failures = append(v.failures, FieldError{Field: prefix, Message: err.Error()})
	return v
}

// Apply runs r against v.
func (v *Validator) Apply(r Rules) *Validator {
	r.Rules(v)
	return v
}

// HasErrors reports whether any rule failed.
func (v *Validator) HasErrors() bool { return len(v.failures) > 0 }

// Errors returns the recorded failures in rule order.
func (v *Validator) Errors() []FieldError { return slices.Clone(v.failures) }

// Error returns a Validation AppError describing every failure, or nil.
// The error's Field is the first failing field.
func (v *Validator) Error() error {
	if appErr := toAppError(v.failures); appErr != nil {
		return appErr
	}
	return nil
}

// Required validates a single required value.
func Required(field, value string) error {
	return New().Required(field, value).Error()
}

func qualify(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	default:
		return prefix + "." + field
	}
}

func toAppError(failures []FieldError) *errors.AppError {
	if len(failures) == 0 {
		return nil
	}

	first := failures[0]
	message := first.Message
	if len(failures) > 1 {
		parts := make([]string, len(failures))
		for i, f := range failures {
			parts[i] = f.Field + ": " + f.Message
		}
		message = strings.Join(parts, "; ")
	}

	return errors.Validation(first.Field, message).
		With(errors.WithDetail("fields", slices.Clone(failures)))
}
