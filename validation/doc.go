// Package validation provides input validation that reports failures as
// Validation-kind errors.
//
// # Struct Tag Validation
//
//	type DatabaseConfig struct {
//	    Host string `mapstructure:"DB_HOST" validate:"required"`
//	    Port int    `mapstructure:"DB_PORT" validate:"min=1,max=65535"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
// Rules that span fields go in a Rules method, which config.Bind runs
// after the tags:
//
//	func (c *PoolConfig) Rules(v *validation.Validator) {
//	    v.Check(c.Min <= c.Max, "DB_POOL_MIN", "must not exceed DB_POOL_MAX")
//	}
package validation
