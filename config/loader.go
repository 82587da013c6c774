package config

import (
	"context"
	"fmt"
	"maps"

	"github.com/kbukum/appkit/logger"
)

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	files     []Source
	base      []Source
	extra     []Source
	overrides map[string]string
	log       *logger.Logger
}

// WithSource adds a source merged after the base sources.
func WithSource(s Source) LoadOption {
	return func(o *loadOptions) { o.extra = append(o.extra, s) }
}

// WithSources replaces the base sources (the process environment by default).
func WithSources(sources ...Source) LoadOption {
	return func(o *loadOptions) { o.base = sources }
}

// WithDotenv layers .env files underneath the base sources. Missing files
// are skipped.
func WithDotenv(paths ...string) LoadOption {
	return func(o *loadOptions) {
		o.files = append(o.files, DotenvSource{Paths: paths, Optional: true})
	}
}

// WithConfigFile layers a structured config file underneath the base
// sources. The file must exist.
func WithConfigFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.files = append(o.files, FileSource{Path: path})
	}
}

// WithOverrides merges values on top of every source.
func WithOverrides(values map[string]string) LoadOption {
	return func(o *loadOptions) {
		if o.overrides == nil {
			o.overrides = make(map[string]string, len(values))
		}
		maps.Copy(o.overrides, values)
	}
}

// WithLogger sets the logger used to report merged sources.
func WithLogger(l *logger.Logger) LoadOption {
	return func(o *loadOptions) { o.log = l }
}

// Load builds an Environment for flavor.
//
// Sources are merged in this order, later values winning: config files and
// dotenv files in option order, the base sources, sources added with
// WithSource, and finally the overrides. Any source failure fails the load.
func Load(ctx context.Context, flavor Flavor, opts ...LoadOption) (*Environment, error) {
	o := loadOptions{base: []Source{OSSource{}}}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log
	if log == nil {
		log = logger.WithComponent("config")
	}

	sources := make([]Source, 0, len(o.files)+len(o.base)+len(o.extra)+1)
	sources = append(sources, o.files...)
	sources = append(sources, o.base...)
	sources = append(sources, o.extra...)
	if len(o.overrides) > 0 {
		sources = append(sources, MapSource(o.overrides))
	}

	merged := make(map[string]string)
	for _, s := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := sourceName(s)
		values, err := s.Values(ctx)
		if err != nil {
			return nil, fmt.Errorf("config: source %s: %w", name, err)
		}
		maps.Copy(merged, values)
		log.Debug("merged config source", logger.Fields(logger.FieldSource, name, logger.FieldCount, len(values)))
	}

	log.Debug("environment loaded", logger.Fields(logger.FieldFlavor, flavor.String(), logger.FieldCount, len(merged)))
	return &Environment{flavor: flavor, values: merged}, nil
}
