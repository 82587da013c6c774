package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/appkit/config"
	"github.com/kbukum/appkit/di"
)

// InitHook is a unit of startup work. Hooks run one at a time in the order
// given and may register or resolve dependencies.
type InitHook func(ctx context.Context, c *di.Container, env *config.Environment) error

// DisposeHook is a unit of shutdown work. Dispose hooks run in reverse order.
type DisposeHook func(ctx context.Context, c *di.Container) error

// callHook runs fn with panic recovery. With a positive timeout the hook
// runs on its own goroutine and is abandoned once the timeout elapses; its
// context is cancelled so a cooperative hook can stop early.
func callHook(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if timeout <= 0 {
		return protect(ctx, fn)
	}

	hookCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- protect(hookCtx, fn) }()

	select {
	case err := <-done:
		return err
	case <-hookCtx.Done():
		return fmt.Errorf("hook did not complete within %s: %w", timeout, hookCtx.Err())
	}
}
