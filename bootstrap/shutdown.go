package bootstrap

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/appkit/di"
	"github.com/kbukum/appkit/logger"
)

// Shutdown runs hooks from last to first, then resets the container.
//
// Every hook runs regardless of earlier failures. Failures, including
// panics, are logged and passed to the error handler if one is set; they
// are never returned. The container is reset even if every hook fails.
func Shutdown(ctx context.Context, c *di.Container, hooks []DisposeHook, opts ...Option) {
	o := resolveOptions(opts)
	runID := o.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logger.ContextWithRunID(ctx, runID)
	log := o.logger.WithContext(ctx)
	tel := newTelemetry(o.tracerProvider, o.meterProvider)

	ctx, span := tel.tracer.Start(ctx, "bootstrap.shutdown", trace.WithAttributes(
		AttrRunID.String(runID),
		AttrHookCount.Int(len(hooks)),
	))
	defer span.End()
	defer func() {
		c.Reset()
		log.Info("container reset")
	}()

	start := time.Now()
	log.Info("shutdown starting", logger.Fields(logger.FieldCount, len(hooks)))

	count := len(hooks)
	failed := 0
	for i := count - 1; i >= 0; i-- {
		index := i + 1
		hook := hooks[i]
		phase := hookPhase("dispose", index, count)
		hookLog := log.WithFields(logger.Fields(logger.FieldPhase, phase))

		err := tel.runHook(ctx, "dispose", index, count, runID, func(ctx context.Context) error {
			return callHook(ctx, o.hookTimeout, func(ctx context.Context) error {
				return hook(ctx, c)
			})
		})
		if err == nil {
			hookLog.Debug("dispose hook completed")
			continue
		}

		failed++
		f := newFailure(phase, index, count, err, runID)
		hookLog.Error("dispose hook failed", logger.ErrorFields(phase, err))
		if o.onError != nil {
			o.onError(ctx, f)
		}
	}

	fields := logger.DurationFields("shutdown", time.Since(start))
	fields["failures"] = failed
	log.Info("shutdown completed", fields)
}
