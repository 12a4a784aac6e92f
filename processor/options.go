package processor

import (
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	iviper "community-id-go/x/viper"
)

type Option func(*Config) error

// LoadConfig reads the config from the "processor" section of v.
func LoadConfig(v *viper.Viper) Option {
	return func(c *Config) error {
		return iviper.UnmarshalKey(v, "processor", c)
	}
}

func WithConfig(cfg *Config) Option {
	return func(c *Config) error {
		logger := c.logger
		*c = *cfg
		c.logger = logger
		return nil
	}
}

func WithFields(fields ...string) Option {
	return func(c *Config) error {
		c.Fields = fields
		return nil
	}
}

func WithTargetField(field string) Option {
	return func(c *Config) error {
		c.TargetField = field
		return nil
	}
}

func WithSeed(seed string) Option {
	return func(c *Config) error {
		c.Seed = seed
		return nil
	}
}

func WithIgnoreMissing(ignore bool) Option {
	return func(c *Config) error {
		c.IgnoreMissing = ignore
		return nil
	}
}

func WithLogLevel(level zerolog.Level) Option {
	return func(c *Config) error {
		c.logger = c.logger.Level(level)
		return nil
	}
}
