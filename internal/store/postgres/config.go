package postgres

import (
	"fmt"
	"time"
)

// Config holds configuration for the PostgreSQL storage engine.
type Config struct {
	PoolConfig

	// AutoMigrate applies pending migrations when the engine is created.
	AutoMigrate bool

	// QueryTimeoutSeconds is the maximum time a single statement can run before timing out.
	// Default: 10 seconds
	QueryTimeoutSeconds int32

	// MaxTxAttempts bounds how often a unit of work is retried after a serialization failure.
	// Default: 5
	MaxTxAttempts uint
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := c.PoolConfig.Validate(); err != nil {
		return err
	}
	if c.QueryTimeoutSeconds < 0 {
		return fmt.Errorf("query timeout must not be negative")
	}
	return nil
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *Config) ApplyDefaults() {
	c.PoolConfig.ApplyDefaults()
	if c.QueryTimeoutSeconds == 0 {
		c.QueryTimeoutSeconds = 10 // 10 seconds
	}
	if c.MaxTxAttempts == 0 {
		c.MaxTxAttempts = 5
	}
}

func (c *Config) queryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}
