package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/opendevtool/dbbridge/pkg/adapter"
	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
)

// Adapter implements the adapter.DatabaseAdapter interface for MySQL.
type Adapter struct{}

// NewAdapter creates a new MySQL adapter.
func NewAdapter() adapter.DatabaseAdapter {
	return &Adapter{}
}

// Type returns the database type identifier.
func (a *Adapter) Type() dbcapabilities.DatabaseID {
	return dbcapabilities.MySQL
}

// Capabilities returns the capabilities metadata for MySQL.
func (a *Adapter) Capabilities() dbcapabilities.Capability {
	return dbcapabilities.MustGet(dbcapabilities.MySQL)
}

// buildDSN assembles the go-sql-driver DSN for the config. parseTime makes
// the driver return time.Time for temporal columns instead of raw bytes.
func buildDSN(config adapter.ConnectionConfig) string {
	cfg := mysql.NewConfig()
	cfg.User = config.Username
	cfg.Passwd = config.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", config.Host, config.EffectivePort())
	cfg.DBName = config.DatabaseName
	cfg.ParseTime = true
	if config.ConnectTimeout > 0 {
		cfg.Timeout = time.Duration(config.ConnectTimeout) * time.Second
	}
	return cfg.FormatDSN()
}

// Connect opens a connection pool to a MySQL database and verifies it with
// a ping before handing it out.
func (a *Adapter) Connect(ctx context.Context, config adapter.ConnectionConfig) (adapter.Connection, error) {
	db, err := sql.Open("mysql", buildDSN(config))
	if err != nil {
		return nil, adapter.NewConnectionError(
			dbcapabilities.MySQL,
			config.Host,
			config.EffectivePort(),
			fmt.Errorf("error connecting to database: %w", err),
		)
	}
	if config.MaxPoolSize > 0 {
		db.SetMaxOpenConns(config.MaxPoolSize)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, adapter.NewConnectionError(
			dbcapabilities.MySQL,
			config.Host,
			config.EffectivePort(),
			fmt.Errorf("error pinging database: %w", err),
		)
	}

	return &Connection{
		id:        config.ConnectionID,
		db:        db,
		config:    config,
		adapter:   a,
		connected: 1,
	}, nil
}

// Connection implements adapter.Connection for MySQL.
type Connection struct {
	id        string
	db        *sql.DB
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
	return dbcapabilities.MySQL
}

// IsConnected returns whether the connection is active.
func (c *Connection) IsConnected() bool {
	return atomic.LoadInt32(&c.connected) == 1
}

// Ping checks if the connection is alive.
func (c *Connection) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return mapError("ping", err)
	}
	return nil
}

// Close closes the connection pool.
func (c *Connection) Close() error {
	if atomic.CompareAndSwapInt32(&c.connected, 1, 0) {
		return c.db.Close()
	}
	return nil
}

// Raw returns the underlying *sql.DB.
func (c *Connection) Raw() interface{} {
	return c.db
}

// Config returns the connection configuration.
func (c *Connection) Config() adapter.ConnectionConfig {
	return c.config
}

// Adapter returns the database adapter.
func (c *Connection) Adapter() adapter.DatabaseAdapter {
	return c.adapter
}
