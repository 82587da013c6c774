package config

import (
	"github.com/kbukum/appkit/logger"
	"github.com/kbukum/appkit/validation"
	"github.com/kbukum/appkit/version"
)

// ServiceConfig contains the essential settings every service reads from its
// environment. Projects extend it by embedding:
//
//	type MyConfig struct {
//	    config.ServiceConfig `mapstructure:",squash"`
//	    DatabaseURL string `mapstructure:"DATABASE_URL" validate:"required"`
//	}
type ServiceConfig struct {
	Name    string `mapstructure:"SERVICE_NAME" validate:"required"`
	Version string `mapstructure:"SERVICE_VERSION"`
	Debug   bool   `mapstructure:"DEBUG"`

	// Logging is read from the LOG_* keys by LoadServiceConfig.
	Logging logger.Config `mapstructure:"-"`
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Version == "" {
		c.Version = version.Version
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Rules checks what struct tags cannot express.
func (c *ServiceConfig) Rules(v *validation.Validator) {
	v.NoSpace("SERVICE_NAME", c.Name).
		NoSpace("SERVICE_VERSION", c.Version).
		Nested("LOG", c.Logging.Validate())
}

// LoadServiceConfig binds a ServiceConfig from env. DEBUG defaults to true
// for the dev flavor.
func LoadServiceConfig(env *Environment) (ServiceConfig, error) {
	cfg, err := Bind[ServiceConfig](env)
	if err != nil {
		return cfg, err
	}
	if !env.Has("DEBUG") {
		cfg.Debug = env.IsDev()
	}
	cfg.Logging = logger.ConfigFromEnv(env)
	cfg.Logging.ServiceName = cfg.Name
	return cfg, validation.New().Apply(&cfg).Error()
}
