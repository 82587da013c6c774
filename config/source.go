package config

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Source provides raw key/value pairs to the loader.
type Source interface {
	Values(ctx context.Context) (map[string]string, error)
}

// OSSource reads the process environment.
type OSSource struct {
	// Environ returns KEY=VALUE pairs. Defaults to os.Environ.
	Environ func() []string
}

func (s OSSource) Values(_ context.Context) (map[string]string, error) {
	environ := s.Environ
	if environ == nil {
		environ = os.Environ
	}
	out := make(map[string]string)
	for _, kv := range environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		out[k] = v
	}
	return out, nil
}

func (OSSource) String() string { return "os" }

// MapSource serves a fixed map.
type MapSource map[string]string

func (s MapSource) Values(_ context.Context) (map[string]string, error) {
	return maps.Clone(map[string]string(s)), nil
}

func (MapSource) String() string { return "map" }

// DotenvSource parses .env files without touching the process environment.
// Later paths win on conflicting keys.
type DotenvSource struct {
	Paths []string
	// Optional skips paths that do not exist instead of failing.
	Optional bool
}

func (s DotenvSource) Values(_ context.Context) (map[string]string, error) {
	out := make(map[string]string)
	for _, path := range s.Paths {
		if s.Optional && !fileExists(path) {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		maps.Copy(out, values)
	}
	return out, nil
}

func (s DotenvSource) String() string { return "dotenv" + fmt.Sprint(s.Paths) }

// FileSource reads a structured config file (YAML, JSON, TOML, ...) with
// viper. Nested keys are flattened to UPPER_SNAKE so that database.host
// becomes DATABASE_HOST and shares the key space of environment variables.
// Lists are joined with commas.
type FileSource struct {
	Path string
	// Optional skips a missing file instead of failing.
	Optional bool
}

func (s FileSource) Values(_ context.Context) (map[string]string, error) {
	if s.Optional && !fileExists(s.Path) {
		return map[string]string{}, nil
	}

	v := viper.New()
	v.SetConfigFile(s.Path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}

	out := make(map[string]string, len(v.AllKeys()))
	for _, key := range v.AllKeys() {
		value, err := flattenValue(v.Get(key))
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		out[envKey(key)] = value
	}
	return out, nil
}

func (s FileSource) String() string { return "file[" + s.Path + "]" }

var keyReplacer = strings.NewReplacer(".", "_", "-", "_")

func envKey(key string) string {
	return strings.ToUpper(keyReplacer.Replace(key))
}

func flattenValue(value any) (string, error) {
	switch value.(type) {
	case []any, []string:
		items, err := cast.ToStringSliceE(value)
		if err != nil {
			return "", err
		}
		return strings.Join(items, ","), nil
	default:
		return cast.ToStringE(value)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !stderrors.Is(err, fs.ErrNotExist)
}

func sourceName(s Source) string {
	if n, ok := s.(fmt.Stringer); ok {
		return n.String()
	}
	return fmt.Sprintf("%T", s)
}
