package bootstrap

import (
	"context"
	"fmt"

	"github.com/kbukum/appkit/component"
	"github.com/kbukum/appkit/config"
	"github.com/kbukum/appkit/di"
)

// ComponentHooks returns a pair of hooks managing a component of type T.
//
// The init hook builds the component, starts it and registers it as a
// singleton of T. The dispose hook stops whatever T is registered, so
// passing the pair to Use keeps start and stop order symmetric.
func ComponentHooks[T component.Component](build func(ctx context.Context, c *di.Container, env *config.Environment) (T, error)) (InitHook, DisposeHook) {
	initHook := func(ctx context.Context, c *di.Container, env *config.Environment) error {
		comp, err := build(ctx, c, env)
		if err != nil {
			return err
		}
		if err := comp.Start(ctx); err != nil {
			return fmt.Errorf("start %s: %w", comp.Name(), err)
		}
		if err := di.RegisterSingleton(c, comp); err != nil {
			_ = comp.Stop(ctx)
			return err
		}
		return nil
	}

	disposeHook := func(ctx context.Context, c *di.Container) error {
		comp, ok, err := di.TryGet[T](c)
		if err != nil || !ok {
			return err
		}
		if err := comp.Stop(ctx); err != nil {
			return fmt.Errorf("stop %s: %w", comp.Name(), err)
		}
		return nil
	}

	return initHook, disposeHook
}
