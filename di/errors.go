package di

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sentinel errors for errors.Is matching. The typed errors below unwrap to
// them, so callers can match either way.
var (
	ErrDependencyNotFound    = errors.New("di: dependency not found")
	ErrDuplicateRegistration = errors.New("di: duplicate registration")
	ErrCyclicDependency      = errors.New("di: cyclic dependency")
)

var (
	_ error = (*DependencyNotFoundError)(nil)
	_ error = (*DuplicateRegistrationError)(nil)
	_ error = (*CyclicDependencyError)(nil)
	_ error = (*ResolutionError)(nil)
)

// DependencyNotFoundError is returned by Get when nothing is registered
// under the requested type and name.
type DependencyNotFoundError struct {
	Type  reflect.Type
	Name  string
	Named bool
}

func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("di: dependency not found: %s", describe(e.Type, e.Name, e.Named))
}

func (e *DependencyNotFoundError) Unwrap() error { return ErrDependencyNotFound }

// DuplicateRegistrationError is returned by the Register functions when the
// key is taken and AllowOverride was not given.
type DuplicateRegistrationError struct {
	Type  reflect.Type
	Name  string
	Named bool
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("di: %s is already registered", describe(e.Type, e.Name, e.Named))
}

func (e *DuplicateRegistrationError) Unwrap() error { return ErrDuplicateRegistration }

// CyclicDependencyError is returned when a factory, directly or through
// other factories, resolves the key it is constructing. Path lists the keys
// in resolution order and ends with the repeated key.
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	return "di: cyclic dependency: " + strings.Join(e.Path, " -> ")
}

func (e *CyclicDependencyError) Unwrap() error { return ErrCyclicDependency }

// ResolutionError wraps a failure returned by a factory.
type ResolutionError struct {
	Type  reflect.Type
	Name  string
	Named bool
	Cause error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("di: resolve %s: %v", describe(e.Type, e.Name, e.Named), e.Cause)
}

func (e *ResolutionError) Unwrap() error { return e.Cause }

func describe(t reflect.Type, name string, named bool) string {
	if !named {
		return formatType(t)
	}
	return fmt.Sprintf("%s (name: %q)", formatType(t), name)
}

func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
