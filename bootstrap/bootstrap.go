package bootstrap

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/appkit/config"
	"github.com/kbukum/appkit/di"
	"github.com/kbukum/appkit/logger"
	"github.com/kbukum/appkit/version"
)

// Bundle is the result of a bootstrap run.
type Bundle struct {
	Container   *di.Container
	Environment *config.Environment
	RunID       string
}

// Bootstrap loads the environment for flavor, registers the container and
// the environment into the container, then runs hooks in order.
//
// Without an error handler the first failure is returned as a *Failure and
// remaining hooks are skipped. With one, the handler receives each failure
// and the sequence continues; a failed environment load is replaced with
// an empty dev environment.
func Bootstrap(ctx context.Context, flavor config.Flavor, hooks []InitHook, opts ...Option) (*Bundle, error) {
	o := resolveOptions(opts)
	runID := o.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logger.ContextWithRunID(ctx, runID)
	log := o.logger.WithContext(ctx)
	tel := newTelemetry(o.tracerProvider, o.meterProvider)

	ctx, span := tel.tracer.Start(ctx, "bootstrap", trace.WithAttributes(
		AttrRunID.String(runID),
		AttrFlavor.String(flavor.String()),
		AttrHookCount.Int(len(hooks)),
	))
	defer span.End()

	start := time.Now()
	log.Info("bootstrap starting", logger.Fields(
		logger.FieldFlavor, flavor.String(),
		logger.FieldCount, len(hooks),
	))

	c := o.container
	if c == nil {
		c = di.New()
	}

	// Phase 1: environment
	env, err := loadEnvironment(ctx, tel, flavor, o)
	if err != nil {
		f := newFailure(PhaseEnvironment, 0, len(hooks), err, runID)
		if o.onError == nil {
			log.Error("bootstrap aborted", logger.ErrorFields(PhaseEnvironment, err))
			markFailed(span, f)
			return nil, f
		}
		log.Warn("environment loading failed, continuing with an empty environment", logger.ErrorFields(PhaseEnvironment, err))
		o.onError(ctx, f)
		env = config.ForTesting(nil)
	}

	// Phase 2: self-registration and hooks
	if err := di.RegisterSingleton(c, c, di.AllowOverride()); err != nil {
		return nil, err
	}
	if err := di.RegisterSingleton(c, env, di.AllowOverride()); err != nil {
		return nil, err
	}

	hooksCtx, hooksSpan := tel.tracer.Start(ctx, "bootstrap.hooks")
	failed := 0
	for i, hook := range hooks {
		index, count := i+1, len(hooks)
		phase := hookPhase("init", index, count)
		hookLog := log.WithFields(logger.Fields(logger.FieldPhase, phase))

		hookLog.Debug("running init hook")
		hookStart := time.Now()
		err := tel.runHook(hooksCtx, "init", index, count, runID, func(ctx context.Context) error {
			return callHook(ctx, o.hookTimeout, func(ctx context.Context) error {
				return hook(ctx, c, env)
			})
		})
		if err == nil {
			hookLog.Debug("init hook completed", logger.DurationFields(phase, time.Since(hookStart)))
			continue
		}

		failed++
		f := newFailure(phase, index, count, err, runID)
		if o.onError == nil {
			hookLog.Error("bootstrap aborted", logger.ErrorFields(phase, err))
			markFailed(hooksSpan, f)
			hooksSpan.End()
			markFailed(span, f)
			return nil, f
		}
		hookLog.Warn("init hook failed, continuing", logger.ErrorFields(phase, err))
		o.onError(hooksCtx, f)
	}
	hooksSpan.End()

	bundle := &Bundle{Container: c, Environment: env, RunID: runID}
	elapsed := time.Since(start)
	fields := logger.DurationFields("bootstrap", elapsed)
	fields["failures"] = failed
	log.Info("bootstrap completed", fields)

	if o.summary != nil {
		s := NewSummary(env.String("SERVICE_NAME", "app"), env.String("SERVICE_VERSION", version.Version))
		s.SetFlavor(flavor)
		s.SetRunID(runID)
		s.SetStartupDuration(elapsed)
		s.SetFailures(failed)
		s.Render(ctx, o.summary, c)
	}
	return bundle, nil
}

func loadEnvironment(ctx context.Context, tel *telemetry, flavor config.Flavor, o *options) (*config.Environment, error) {
	ctx, span := tel.tracer.Start(ctx, "bootstrap.environment")
	defer span.End()

	loadOpts := append([]config.LoadOption{config.WithLogger(o.logger.WithComponent("config"))}, o.loadOptions...)

	var env *config.Environment
	err := protect(ctx, func(ctx context.Context) error {
		var err error
		env, err = config.Load(ctx, flavor, loadOpts...)
		return err
	})
	if err != nil {
		markFailed(span, err)
		return nil, err
	}
	return env, nil
}
