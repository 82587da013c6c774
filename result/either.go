package result

// Either holds a value of type L or a value of type R.
type Either[L, R any] struct {
	left   L
	right  R
	isLeft bool
}

// Left returns an Either holding l.
func Left[L, R any](l L) Either[L, R] {
	return Either[L, R]{left: l, isLeft: true}
}

// Right returns an Either holding r.
func Right[L, R any](r R) Either[L, R] {
	return Either[L, R]{right: r}
}

func (e Either[L, R]) IsLeft() bool  { return e.isLeft }
func (e Either[L, R]) IsRight() bool { return !e.isLeft }

// LeftValue returns the left value and whether it is present.
func (e Either[L, R]) LeftValue() (L, bool) { return e.left, e.isLeft }

// RightValue returns the right value and whether it is present.
func (e Either[L, R]) RightValue() (R, bool) { return e.right, !e.isLeft }

// Swap exchanges the sides.
func (e Either[L, R]) Swap() Either[R, L] {
	if e.isLeft {
		return Right[R, L](e.left)
	}
	return Left[R, L](e.right)
}

func FoldEither[L, R, U any](e Either[L, R], onLeft func(L) U, onRight func(R) U) U {
	if e.isLeft {
		return onLeft(e.left)
	}
	return onRight(e.right)
}

func MapRight[L, R, U any](e Either[L, R], fn func(R) U) Either[L, U] {
	if e.isLeft {
		return Left[L, U](e.left)
	}
	return Right[L](fn(e.right))
}

func MapLeft[L, R, U any](e Either[L, R], fn func(L) U) Either[U, R] {
	if e.isLeft {
		return Left[U, R](fn(e.left))
	}
	return Right[U](e.right)
}

// ToEither converts a Result into an Either with the failure on the left.
func ToEither[T any](r Result[T]) Either[error, T] {
	if r.err != nil {
		return Left[error, T](r.err)
	}
	return Right[error](r.value)
}

// FromEither converts an Either with the failure on the left into a Result.
func FromEither[T any](e Either[error, T]) Result[T] {
	if e.isLeft {
		return Fail[T](e.left)
	}
	return Ok(e.right)
}
