package result

import (
	"fmt"

	apperrors "github.com/kbukum/appkit/errors"
)

// Unit is the single-valued type used when a Result carries no payload.
type Unit struct{}

// UnitValue is the only value of Unit.
var UnitValue = Unit{}

// Result is either a success value of type T or a failure.
type Result[T any] struct {
	value T
	err   error
}

// Ok returns a successful Result holding v.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail returns a failed Result. A nil err is replaced with an Unknown
// AppError so the failure branch is never empty.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = apperrors.Unknown("result: failure without error")
	}
	return Result[T]{err: err}
}

// From builds a Result from a conventional (value, error) pair.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Result[T]{err: err}
	}
	return Ok(v)
}

// Try runs fn and captures its outcome. A panic inside fn becomes an
// Unknown failure carrying the panic value and stack.
func Try[T any](fn func() (T, error)) (r Result[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			r = Fail[T](apperrors.Unknown(fmt.Sprintf("panic: %v", rec)).CaptureTrace())
		}
	}()
	v, err := fn()
	return From(v, err)
}

// IsOk reports whether r holds a value.
func (r Result[T]) IsOk() bool { return r.err == nil }

// IsErr reports whether r holds a failure.
func (r Result[T]) IsErr() bool { return r.err != nil }

// Value returns the success value, or the zero value on failure.
func (r Result[T]) Value() T { return r.value }

// Err returns the failure, or nil on success.
func (r Result[T]) Err() error { return r.err }

// Get returns the Result as a (value, error) pair.
func (r Result[T]) Get() (T, error) { return r.value, r.err }

// ValueOr returns the success value, or def on failure.
func (r Result[T]) ValueOr(def T) T {
	if r.err != nil {
		return def
	}
	return r.value
}

// MustGet returns the success value and panics on failure.
func (r Result[T]) MustGet() T {
	if r.err != nil {
		panic(fmt.Sprintf("result: MustGet on failure: %v", r.err))
	}
	return r.value
}

// String implements fmt.Stringer.
func (r Result[T]) String() string {
	if r.err != nil {
		return fmt.Sprintf("Fail(%v)", r.err)
	}
	return fmt.Sprintf("Ok(%v)", r.value)
}

// Map applies fn to the value of a successful Result.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Ok(fn(r.value))
}

// FlatMap chains an operation that may itself fail.
func FlatMap[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return fn(r.value)
}

// MapErr transforms the failure of r, leaving successes untouched.
func MapErr[T any](r Result[T], fn func(error) error) Result[T] {
	if r.err == nil {
		return r
	}
	return Fail[T](fn(r.err))
}

// Fold collapses r into a single value.
func Fold[T, U any](r Result[T], onErr func(error) U, onOk func(T) U) U {
	if r.err != nil {
		return onErr(r.err)
	}
	return onOk(r.value)
}
