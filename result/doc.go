// Package result provides success/failure sum types for code that prefers
// returning a single value over the (value, error) pair.
//
// A Result[T] holds either a value or an error, never both and never
// neither. Either[L, R] is the symmetric form; by convention Left is the
// failure side. Unit stands in for T when only the outcome matters.
package result
