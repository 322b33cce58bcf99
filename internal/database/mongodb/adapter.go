package mongodb

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/opendevtool/dbbridge/pkg/adapter"
	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
)

// Adapter implements the adapter.DatabaseAdapter interface for MongoDB.
type Adapter struct{}

// NewAdapter creates a new MongoDB adapter.
func NewAdapter() adapter.DatabaseAdapter {
	return &Adapter{}
}

// Type returns the database type identifier.
func (a *Adapter) Type() dbcapabilities.DatabaseID {
	return dbcapabilities.MongoDB
}

// Capabilities returns the capabilities metadata for MongoDB.
func (a *Adapter) Capabilities() dbcapabilities.Capability {
	return dbcapabilities.MustGet(dbcapabilities.MongoDB)
}

// Connect establishes a client connection to a MongoDB database and
// verifies it against the primary before handing it out.
func (a *Adapter) Connect(ctx context.Context, config adapter.ConnectionConfig) (adapter.Connection, error) {
	clientOptions := options.Client().ApplyURI(config.URL())
	if config.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(uint64(config.MaxPoolSize))
	}
	if config.ConnectTimeout > 0 {
		clientOptions.SetConnectTimeout(time.Duration(config.ConnectTimeout) * time.Second)
	}

	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, adapter.NewConnectionError(
			dbcapabilities.MongoDB,
			config.Host,
			config.EffectivePort(),
			fmt.Errorf("error connecting to database: %w", err),
		)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, adapter.NewConnectionError(
			dbcapabilities.MongoDB,
			config.Host,
			config.EffectivePort(),
			fmt.Errorf("error pinging database: %w", err),
		)
	}

	return &Connection{
		id:        config.ConnectionID,
		client:    client,
		db:        client.Database(config.DatabaseName),
		config:    config,
		adapter:   a,
		connected: 1,
	}, nil
}

// Connection implements adapter.Connection for MongoDB.
type Connection struct {
	id        string
	client    *mongo.Client
	db        *mongo.Database
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
	return dbcapabilities.MongoDB
}

// IsConnected returns whether the connection is active.
func (c *Connection) IsConnected() bool {
	return atomic.LoadInt32(&c.connected) == 1
}

// Ping checks if the connection is alive.
func (c *Connection) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return mapError("ping", err)
	}
	return nil
}

// Close disconnects the client.
func (c *Connection) Close() error {
	if atomic.CompareAndSwapInt32(&c.connected, 1, 0) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return c.client.Disconnect(ctx)
	}
	return nil
}

// Raw returns the underlying *mongo.Database.
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
