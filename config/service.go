package config

import (
	"fmt"

	"github.com/kbukum/tpictl/logger"
)

// CommonConfig contains the fields every tpictl command shares.
// Commands extend it by embedding it in their own config structs.
//
//	type Config struct {
//	    config.CommonConfig `mapstructure:",squash"`
//	    Host string `mapstructure:"host"`
//	}
type CommonConfig struct {
	Verbose bool          `yaml:"verbose" mapstructure:"verbose"`
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetCommonConfig returns the embedded CommonConfig.
func (c *CommonConfig) GetCommonConfig() *CommonConfig {
	return c
}

// ApplyDefaults applies default values to the common fields.
// Verbose raises the log level to debug.
func (c *CommonConfig) ApplyDefaults() {
	if c.Verbose {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the common fields.
func (c *CommonConfig) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
