// Package bootstrap runs an application's startup and shutdown sequences.
//
// Bootstrap loads a config.Environment for a flavor, registers the
// container and the environment into the container, then runs init hooks
// one at a time in order. Shutdown runs dispose hooks in reverse order and
// resets the container.
//
// # Failures
//
// Without an error handler the first failure aborts Bootstrap and is
// returned as a *Failure naming the phase, such as "init hook 2/3". With
// WithErrorHandler every failure goes to the handler and the sequence
// continues. Shutdown never aborts. Panicking hooks are recovered into a
// *PanicError cause.
//
// # Quick Start
//
//	app := bootstrap.NewApp("orders", config.FlavorProd,
//	    bootstrap.WithHookTimeout(10*time.Second),
//	)
//	app.Use(bootstrap.ComponentHooks(newHTTPServer))
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Each run gets an id that is attached to log lines, spans and failures.
package bootstrap
