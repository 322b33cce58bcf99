package adapter

import (
	"fmt"
	"net/url"

	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
)

// ConnectionConfig contains the configuration for a database connection.
// This is a unified configuration that works across all database types.
// It is immutable once a connection has been opened from it.
type ConnectionConfig struct {
	// Caller-chosen identifier for the connection. When empty, the
	// connection manager assigns one.
	ConnectionID string `json:"connectionId,omitempty"`

	// Connection metadata
	Name string `json:"name,omitempty"`

	// Database type, e.g. "postgres", "mysql", "mongodb"
	ConnectionType string `json:"connectionType"`

	// Connection details
	Host         string `json:"host"`
	Port         int    `json:"port,omitempty"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
	DatabaseName string `json:"databaseName"`

	// Pool hints, zero means driver default
	MaxPoolSize    int `json:"maxPoolSize,omitempty"`
	ConnectTimeout int `json:"connectTimeoutSeconds,omitempty"`
}

// DatabaseID resolves the configured connection type to a canonical
// dbcapabilities identifier.
func (c ConnectionConfig) DatabaseID() (dbcapabilities.DatabaseID, bool) {
	return dbcapabilities.ParseID(c.ConnectionType)
}

// EffectivePort returns the configured port, falling back to the database
// type's default port when unset.
func (c ConnectionConfig) EffectivePort() int {
	if c.Port != 0 {
		return c.Port
	}
	if id, ok := c.DatabaseID(); ok {
		return dbcapabilities.DefaultPort(id)
	}
	return 0
}

// Validate checks that the config names a known database type and a target
// host and database.
func (c ConnectionConfig) Validate() error {
	id, ok := c.DatabaseID()
	if !ok {
		return NewConfigurationError(
			dbcapabilities.DatabaseID(c.ConnectionType),
			"connectionType",
			fmt.Sprintf("unknown database type: %q", c.ConnectionType),
		)
	}
	if c.Host == "" {
		return NewConfigurationError(id, "host", "host cannot be empty")
	}
	if c.DatabaseName == "" {
		return NewConfigurationError(id, "databaseName", "database name cannot be empty")
	}
	return nil
}

// URL builds a driver connection URL from the config. MySQL uses a DSN
// rather than a URL and has its own builder in its adapter package.
func (c ConnectionConfig) URL() string {
	id, _ := c.DatabaseID()
	port := c.EffectivePort()

	switch id {
	case dbcapabilities.MongoDB:
		if c.Username == "" {
			return fmt.Sprintf("mongodb://%s:%d/%s", c.Host, port, c.DatabaseName)
		}
		return fmt.Sprintf("mongodb://%s:%s@%s:%d/%s?authSource=admin",
			url.QueryEscape(c.Username), url.QueryEscape(c.Password),
			c.Host, port, c.DatabaseName)
	default:
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
			url.QueryEscape(c.Username), url.QueryEscape(c.Password),
			c.Host, port, c.DatabaseName)
	}
}
