package di

import "github.com/kbukum/appkit/logger"

// Option configures a single registration or lookup.
type Option func(*keyOptions)

type keyOptions struct {
	name          string
	named         bool
	allowOverride bool
}

// Named selects a named registration. Named("") is a distinct key from the
// unnamed registration of the same type.
func Named(name string) Option {
	return func(o *keyOptions) {
		o.name = name
		o.named = true
	}
}

// AllowOverride lets a Register call replace an existing registration. The
// replaced entry and any instance it cached are dropped; holders of that
// instance are not notified. Ignored by lookups.
func AllowOverride() Option {
	return func(o *keyOptions) { o.allowOverride = true }
}

func applyOptions(opts []Option) keyOptions {
	var o keyOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ContainerOption configures a Container.
type ContainerOption func(*registry)

// WithLogger sets the logger the container reports construction, overrides
// and resets to. Defaults to the global logger tagged with component "di".
func WithLogger(l *logger.Logger) ContainerOption {
	return func(r *registry) {
		if l != nil {
			r.log = l
		}
	}
}
