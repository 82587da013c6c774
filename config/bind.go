package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/appkit/errors"
	"github.com/kbukum/appkit/util"
	"github.com/kbukum/appkit/validation"
)

// Bind decodes env into a T and validates it.
//
// Fields are matched by their mapstructure tag, or case-insensitively by
// name. Strings are converted weakly: booleans follow Environment.Bool,
// comma lists become slices and durations use time.ParseDuration. When *T
// has an ApplyDefaults method it runs before validation. Validation runs
// `validate` tags, then validation.Rules, then a Validate() error method.
func Bind[T any](env *Environment) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			boolHook,
			sliceHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, fmt.Errorf("config: bind %s: %w", reflect.TypeFor[T](), err)
	}
	if err := dec.Decode(env.values); err != nil {
		return out, errors.Validation("", fmt.Sprintf("cannot bind %s", reflect.TypeFor[T]())).
			With(errors.WithCause(err))
	}

	if d, ok := any(&out).(interface{ ApplyDefaults() }); ok {
		d.ApplyDefaults()
	}
	if t := reflect.TypeFor[T](); t.Kind() == reflect.Struct {
		if err := validation.Validate(&out); err != nil {
			return out, err
		}
	}
	if r, ok := any(&out).(validation.Rules); ok {
		if err := validation.New().Apply(r).Error(); err != nil {
			return out, err
		}
	}
	if v, ok := any(&out).(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return out, err
		}
	}
	return out, nil
}

var boolHook mapstructure.DecodeHookFuncType = func(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	return truthy[strings.ToLower(strings.TrimSpace(reflect.ValueOf(data).String()))], nil
}

var sliceHook mapstructure.DecodeHookFuncType = func(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}
	parts := util.SplitAndTrim(reflect.ValueOf(data).String(), ",")
	if parts == nil {
		return []string{}, nil
	}
	return parts, nil
}
