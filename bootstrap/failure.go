package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"runtime/debug"

	"github.com/kbukum/appkit/errors"
)

// PhaseEnvironment is the Failure phase of environment loading.
const PhaseEnvironment = "environment loading"

// Failure describes a failed bootstrap or shutdown step.
type Failure struct {
	// Phase is "environment loading", "init hook i/N" or "dispose hook i/N".
	Phase string
	// HookIndex is the 1-based index of the failed hook, 0 for environment loading.
	HookIndex int
	// HookCount is the number of hooks in the sequence.
	HookCount int
	Cause     error
	// Trace is the stack of a recovered panic, or the trace captured by an
	// AppError cause. Empty otherwise.
	Trace string
	RunID string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("bootstrap: %s failed: %v", f.Phase, f.Cause)
}

func (f *Failure) Unwrap() error { return f.Cause }

// ErrorHandler receives failures. Supplying one to Bootstrap makes
// environment and init hook failures non-fatal.
type ErrorHandler func(ctx context.Context, f *Failure)

func hookPhase(kind string, index, count int) string {
	return fmt.Sprintf("%s hook %d/%d", kind, index, count)
}

func newFailure(phase string, index, count int, cause error, runID string) *Failure {
	return &Failure{
		Phase:     phase,
		HookIndex: index,
		HookCount: count,
		Cause:     cause,
		Trace:     traceOf(cause),
		RunID:     runID,
	}
}

// PanicError is the cause of a Failure produced by a panicking hook.
type PanicError struct {
	Value any
	Stack string
}

func (p *PanicError) Error() string { return fmt.Sprintf("panic: %v", p.Value) }

func traceOf(err error) string {
	var p *PanicError
	if stderrors.As(err, &p) {
		return p.Stack
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Trace
	}
	return ""
}

// protect runs fn, converting a panic into a *PanicError.
func protect(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return fn(ctx)
}
