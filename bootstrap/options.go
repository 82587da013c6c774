package bootstrap

import (
	"io"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/appkit/config"
	"github.com/kbukum/appkit/di"
	"github.com/kbukum/appkit/logger"
)

// Option configures Bootstrap, Shutdown and App.
type Option func(*options)

type options struct {
	container      *di.Container
	logger         *logger.Logger
	onError        ErrorHandler
	loadOptions    []config.LoadOption
	hookTimeout    time.Duration
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	summary        io.Writer
	runID          string

	gracefulTimeout time.Duration
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.WithComponent("bootstrap")
	}
	return o
}

// WithContainer bootstraps into an existing container instead of a new one.
func WithContainer(c *di.Container) Option {
	return func(o *options) { o.container = c }
}

// WithLogger sets the logger for bootstrap progress and failures.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithErrorHandler makes environment and init hook failures non-fatal: the
// handler is called with each failure and bootstrap continues. During
// shutdown the handler receives every dispose hook failure.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) { o.onError = h }
}

// WithOverrides merges values on top of every environment source.
func WithOverrides(values map[string]string) Option {
	return func(o *options) {
		o.loadOptions = append(o.loadOptions, config.WithOverrides(values))
	}
}

// WithLoadOptions passes options through to config.Load.
func WithLoadOptions(opts ...config.LoadOption) Option {
	return func(o *options) { o.loadOptions = append(o.loadOptions, opts...) }
}

// WithHookTimeout bounds each hook's run time. By default hooks may run
// forever and a hook that never returns stalls the sequence.
func WithHookTimeout(d time.Duration) Option {
	return func(o *options) { o.hookTimeout = d }
}

// WithTracerProvider sets the provider for bootstrap spans. Defaults to the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider sets the provider for hook metrics. Defaults to the
// global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithSummary writes a startup summary of the container to w once
// bootstrap completes.
func WithSummary(w io.Writer) Option {
	return func(o *options) { o.summary = w }
}

// WithRunID sets the run id instead of generating one. App uses it to tie
// its shutdown to the bootstrap run.
func WithRunID(id string) Option {
	return func(o *options) { o.runID = id }
}

// WithGracefulTimeout bounds App.Stop. A dispose hook still running when it
// expires is abandoned. Defaults to 15 seconds.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *options) { o.gracefulTimeout = d }
}
