package pipeline

import (
	"github.com/inhies/go-bytesize"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	iviper "community-id-go/x/viper"
)

type Option func(*Config) error

// LoadConfig reads the config from the "pipeline" section of v.
func LoadConfig(v *viper.Viper) Option {
	return func(c *Config) error {
		return iviper.UnmarshalKey(v, "pipeline", c)
	}
}

func WithWorkers(n int) Option {
	return func(c *Config) error {
		c.Workers = n
		return nil
	}
}

func WithMaxRecordSize(size bytesize.ByteSize) Option {
	return func(c *Config) error {
		c.MaxRecordSize = size
		return nil
	}
}

func WithPartitions(names ...string) Option {
	return func(c *Config) error {
		c.Partitions = names
		return nil
	}
}

func WithLogLevel(level zerolog.Level) Option {
	return func(c *Config) error {
		c.logger = c.logger.Level(level)
		return nil
	}
}
