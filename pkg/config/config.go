// Package config manages the runtime configuration of the access layer as
// a flat key/value map. Values arrive from the CLI config loader or from
// the embedding host process; consumers read them through typed accessors.
package config

import (
	"strconv"
	"sync"
	"time"
)

// Well-known configuration keys.
const (
	KeyOperationTimeout = "bridge.operation_timeout"
	KeyMaxConcurrentOps = "bridge.max_concurrent_ops"
	KeyDefaultPageLimit = "data.default_page_limit"
	KeyStorePath        = "store.path"
)

// Config manages service configuration.
type Config struct {
	mu     sync.RWMutex
	values map[string]string
}

// New creates a new configuration manager.
func New() *Config {
	return &Config{
		values: make(map[string]string),
	}
}

// Get retrieves a configuration value.
func (c *Config) Get(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key]
}

// GetInt retrieves a configuration value as an integer, falling back to
// def when unset or unparsable.
func (c *Config) GetInt(key string, def int) int {
	v := c.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// GetDuration retrieves a configuration value as a duration, falling back
// to def when unset or unparsable.
func (c *Config) GetDuration(key string, def time.Duration) time.Duration {
	v := c.Get(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// GetAll returns a copy of all configuration values.
func (c *Config) GetAll() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Update updates configuration values.
func (c *Config) Update(values map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range values {
		c.values[k] = v
	}
}

// Set updates a single configuration value.
func (c *Config) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}
