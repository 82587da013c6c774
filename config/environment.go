package config

import (
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/appkit/util"
)

var truthy = map[string]bool{"true": true, "1": true, "yes": true, "on": true}

// Environment is an immutable snapshot of string configuration values
// tagged with the flavor it was loaded for. All accessors are safe for
// concurrent use.
type Environment struct {
	flavor Flavor
	values map[string]string
}

// NewEnvironment creates a snapshot of values. The map is copied.
func NewEnvironment(flavor Flavor, values map[string]string) *Environment {
	return &Environment{flavor: flavor, values: util.Merge(values)}
}

// ForTesting creates a dev-flavored snapshot of values without consulting
// any source.
func ForTesting(values map[string]string) *Environment {
	return NewEnvironment(FlavorDev, values)
}

func (e *Environment) Flavor() Flavor  { return e.flavor }
func (e *Environment) IsDev() bool     { return e.flavor == FlavorDev }
func (e *Environment) IsStaging() bool { return e.flavor == FlavorStaging }
func (e *Environment) IsProd() bool    { return e.flavor == FlavorProd }

// Lookup returns the raw value for key and whether it is present.
func (e *Environment) Lookup(key string) (string, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Has reports whether key is present.
func (e *Environment) Has(key string) bool {
	_, ok := e.values[key]
	return ok
}

// String returns the raw value for key, or def when absent.
func (e *Environment) String(key, def string) string {
	if v, ok := e.values[key]; ok {
		return v
	}
	return def
}

// Int parses key as a base-10 integer, returning def when absent or unparsable.
func (e *Environment) Int(key string, def int) int {
	v, ok := e.values[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// Float parses key as a float, returning def when absent or unparsable.
func (e *Environment) Float(key string, def float64) float64 {
	v, ok := e.values[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// Bool reports whether key is one of "true", "1", "yes" or "on", ignoring
// case. Any other present value is false; def is returned only when absent.
func (e *Environment) Bool(key string, def bool) bool {
	v, ok := e.values[key]
	if !ok {
		return def
	}
	return truthy[strings.ToLower(strings.TrimSpace(v))]
}

// StringSlice splits key on commas and trims each element. An absent or
// empty value yields def, or an empty slice when def is nil.
func (e *Environment) StringSlice(key string, def []string) []string {
	if parts := util.SplitAndTrim(e.values[key], ","); len(parts) > 0 {
		return parts
	}
	if def == nil {
		return []string{}
	}
	return def
}

// Duration parses key with time.ParseDuration, returning def when absent or
// unparsable.
func (e *Environment) Duration(key string, def time.Duration) time.Duration {
	v, ok := e.values[key]
	if !ok {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return d
}

// Keys returns every key in ascending order.
func (e *Environment) Keys() []string {
	return util.SortedKeys(e.values)
}

// All returns a copy of the underlying values.
func (e *Environment) All() map[string]string {
	return maps.Clone(e.values)
}

// Len returns the number of keys.
func (e *Environment) Len() int { return len(e.values) }
