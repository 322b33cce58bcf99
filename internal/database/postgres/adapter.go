package postgres

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opendevtool/dbbridge/pkg/adapter"
	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
)

// Adapter implements the adapter.DatabaseAdapter interface for PostgreSQL.
type Adapter struct{}

// NewAdapter creates a new PostgreSQL adapter.
func NewAdapter() adapter.DatabaseAdapter {
	return &Adapter{}
}

// Type returns the database type identifier.
func (a *Adapter) Type() dbcapabilities.DatabaseID {
	return dbcapabilities.PostgreSQL
}

// Capabilities returns the capabilities metadata for PostgreSQL.
func (a *Adapter) Capabilities() dbcapabilities.Capability {
	return dbcapabilities.MustGet(dbcapabilities.PostgreSQL)
}

// Connect establishes a connection pool to a PostgreSQL database and
// verifies it with a ping before handing it out.
func (a *Adapter) Connect(ctx context.Context, config adapter.ConnectionConfig) (adapter.Connection, error) {
	var connString strings.Builder
	connString.WriteString(config.URL())
	connString.WriteString("?sslmode=prefer")
	if config.MaxPoolSize > 0 {
		fmt.Fprintf(&connString, "&pool_max_conns=%d", config.MaxPoolSize)
	}
	if config.ConnectTimeout > 0 {
		fmt.Fprintf(&connString, "&connect_timeout=%d", config.ConnectTimeout)
	}

	pool, err := pgxpool.New(ctx, connString.String())
	if err != nil {
		return nil, adapter.NewConnectionError(
			dbcapabilities.PostgreSQL,
			config.Host,
			config.EffectivePort(),
			fmt.Errorf("error connecting to database: %w", err),
		)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, adapter.NewConnectionError(
			dbcapabilities.PostgreSQL,
			config.Host,
			config.EffectivePort(),
			fmt.Errorf("error pinging database: %w", err),
		)
	}

	return &Connection{
		id:        config.ConnectionID,
		pool:      pool,
		config:    config,
		adapter:   a,
		connected: 1,
	}, nil
}

// Connection implements adapter.Connection for PostgreSQL.
type Connection struct {
	id        string
	pool      *pgxpool.Pool
	config    adapter.ConnectionConfig
	adapter   *Adapter
	connected int32
}

// ID returns the connection identifier.
func (c *Connection) ID() string {
	return c.id
}

// Type returns the database type.
func (c *Connection) Type() dbcapabilities.DatabaseID {
	return dbcapabilities.PostgreSQL
}

// IsConnected returns whether the connection is active.
func (c *Connection) IsConnected() bool {
	return atomic.LoadInt32(&c.connected) == 1
}

// Ping checks if the connection is alive.
func (c *Connection) Ping(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return mapError("ping", err)
	}
	return nil
}

// Close closes the connection pool.
func (c *Connection) Close() error {
	if atomic.CompareAndSwapInt32(&c.connected, 1, 0) {
		c.pool.Close()
	}
	return nil
}

// Raw returns the underlying pgxpool.Pool.
func (c *Connection) Raw() interface{} {
	return c.pool
}

// Config returns the connection configuration.
func (c *Connection) Config() adapter.ConnectionConfig {
	return c.config
}

// Adapter returns the database adapter.
func (c *Connection) Adapter() adapter.DatabaseAdapter {
	return c.adapter
}
