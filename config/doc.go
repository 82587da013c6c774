// Package config provides the immutable environment snapshot applications
// read their settings from.
//
// An Environment is built once by Load, which merges key/value Sources in a
// fixed order: structured config files (viper), .env files (godotenv), the
// process environment, extra sources and finally explicit overrides. The
// snapshot is read-only afterwards and exposes typed accessors with
// explicit defaults:
//
//	env, err := config.Load(ctx, config.ParseFlavor("prod"),
//	    config.WithConfigFile("config.yml"),
//	    config.WithDotenv(".env"),
//	)
//	port := env.Int("PORT", 8080)
//	hosts := env.StringSlice("KAFKA_BROKERS", nil)
//
// Bind decodes a snapshot into a tagged struct and validates it.
package config
