package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/appkit/config"
	"github.com/kbukum/appkit/di"
	"github.com/kbukum/appkit/logger"
)

const defaultGracefulTimeout = 15 * time.Second

// App pairs init and dispose hooks with a container and runs them as one
// lifecycle.
//
// Example:
//
//	app := bootstrap.NewApp("orders", config.FlavorProd)
//	app.Use(bootstrap.ComponentHooks(newHTTPServer))
//	app.OnInit(registerServices)
//	if err := app.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
type App struct {
	Name   string
	Flavor config.Flavor
	Logger *logger.Logger

	opts            []Option
	onError         ErrorHandler
	gracefulTimeout time.Duration
	hookTimeout     time.Duration
	container       *di.Container

	stages []stage

	mu        sync.Mutex
	bundle    *Bundle
	runID     string
	started   bool
	disposers []DisposeHook
}

// stage is one registration on an App: an init hook, a dispose hook, or a
// pair added by Use.
type stage struct {
	init    InitHook
	dispose DisposeHook
}

// progress records how far a Start got through the stages.
type progress struct {
	mu      sync.Mutex
	reached int
	done    []bool
}

func (p *progress) track(i int, hook InitHook) InitHook {
	return func(ctx context.Context, c *di.Container, env *config.Environment) error {
		p.mu.Lock()
		p.reached = i
		p.mu.Unlock()

		err := hook(ctx, c, env)
		if err == nil {
			p.mu.Lock()
			p.done[i] = true
			p.mu.Unlock()
		}
		return err
	}
}

// NewApp creates an application. opts are passed to Bootstrap and Shutdown.
func NewApp(name string, flavor config.Flavor, opts ...Option) *App {
	o := resolveOptions(opts)
	c := o.container
	if c == nil {
		c = di.New()
	}
	timeout := o.gracefulTimeout
	if timeout <= 0 {
		timeout = defaultGracefulTimeout
	}
	return &App{
		Name:            name,
		Flavor:          flavor,
		Logger:          o.logger,
		opts:            opts,
		onError:         o.onError,
		gracefulTimeout: timeout,
		hookTimeout:     o.hookTimeout,
		container:       c,
	}
}

// Container returns the container hooks run against.
func (a *App) Container() *di.Container { return a.container }

// OnInit appends init hooks.
func (a *App) OnInit(hooks ...InitHook) *App {
	for _, h := range hooks {
		a.stages = append(a.stages, stage{init: h})
	}
	return a
}

// OnDispose appends dispose hooks. They run in reverse order on Stop.
func (a *App) OnDispose(hooks ...DisposeHook) *App {
	for _, h := range hooks {
		a.stages = append(a.stages, stage{dispose: h})
	}
	return a
}

// Use appends a matched pair of hooks, such as the result of ComponentHooks.
// The dispose hook only runs if the init hook succeeded. A nil hook is
// skipped.
func (a *App) Use(init InitHook, dispose DisposeHook) *App {
	if init != nil || dispose != nil {
		a.stages = append(a.stages, stage{init: init, dispose: dispose})
	}
	return a
}

// Start bootstraps the application.
//
// If bootstrap fails, dispose hooks run for what was set up: a pair added
// with Use is disposed only if its init hook succeeded, and a hook added
// with OnDispose only if bootstrap got past it to a later init hook.
func (a *App) Start(ctx context.Context) (*Bundle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return nil, fmt.Errorf("app %s: already started", a.Name)
	}

	a.runID = uuid.NewString()
	a.Logger.Info("starting application", logger.Fields(
		"name", a.Name,
		logger.FieldFlavor, a.Flavor.String(),
	))

	p := &progress{reached: -1, done: make([]bool, len(a.stages))}
	hooks := make([]InitHook, 0, len(a.stages))
	for i, s := range a.stages {
		if s.init != nil {
			hooks = append(hooks, p.track(i, s.init))
		}
	}

	bundle, err := Bootstrap(ctx, a.Flavor, hooks, a.runOptions()...)
	disposers := a.disposersFor(p, err == nil)
	if err != nil {
		a.Logger.Error("application failed to start", logger.ErrorFields("start", err))
		Shutdown(context.WithoutCancel(ctx), a.container, disposers, a.runOptions()...)
		return nil, err
	}
	a.bundle = bundle
	a.started = true
	a.disposers = disposers
	return bundle, nil
}

// disposersFor selects the dispose hooks owed after a Start, in
// registration order. completed reports that every init hook was attempted.
func (a *App) disposersFor(p *progress, completed bool) []DisposeHook {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []DisposeHook
	for i, s := range a.stages {
		switch {
		case s.dispose == nil:
		case s.init != nil:
			if p.done[i] {
				out = append(out, s.dispose)
			}
		case completed || i < p.reached:
			out = append(out, s.dispose)
		}
	}
	return out
}

// Stop runs the dispose hooks within the graceful timeout and resets the
// container. Without WithHookTimeout each hook is abandoned once the
// graceful timeout expires, so a hook that ignores its context cannot hold
// Stop past it. Dispose failures are joined into the returned error.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return nil
	}

	a.Logger.Info("shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.gracefulTimeout)
	defer cancel()

	var failures []error
	collect := func(ctx context.Context, f *Failure) {
		failures = append(failures, f)
		if a.onError != nil {
			a.onError(ctx, f)
		}
	}
	opts := append(a.runOptions(), WithErrorHandler(collect))
	if a.hookTimeout <= 0 {
		opts = append(opts, WithHookTimeout(a.gracefulTimeout))
	}
	Shutdown(ctx, a.container, a.disposers, opts...)

	a.started = false
	a.bundle = nil
	a.disposers = nil
	a.Logger.Info("application shutdown complete")
	return stderrors.Join(failures...)
}

// Run starts the application, blocks until SIGINT, SIGTERM or ctx is done,
// then stops it.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.Start(ctx); err != nil {
		return err
	}
	a.Logger.Info("application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)
	return a.Stop(ctx)
}

// RunTask starts the application, runs task and stops the application
// when the task returns. SIGINT and SIGTERM cancel the task's context.
// The task error takes precedence over a stop error.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context, b *Bundle) error) error {
	bundle, err := a.Start(ctx)
	if err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx, bundle)
	if stopErr := a.Stop(ctx); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// WaitForSignal blocks until SIGINT, SIGTERM or ctx cancellation. It
// returns the signal received, or nil if ctx was done first.
func (a *App) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
		return nil
	}
}

func (a *App) runOptions() []Option {
	opts := make([]Option, 0, len(a.opts)+2)
	opts = append(opts, a.opts...)
	return append(opts, WithContainer(a.container), WithRunID(a.runID))
}
