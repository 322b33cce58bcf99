// Package adapter provides the unified interface for all database adapters.
// This package defines the contracts that database-specific implementations
// must follow: every backend translates its native driver calls and result
// shapes into the dbmodel types, and its native errors into the typed errors
// of this package.
package adapter

import (
	"context"

	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
	"github.com/opendevtool/dbbridge/pkg/dbmodel"
)

// DatabaseAdapter represents a database technology adapter.
// Each database type (PostgreSQL, MySQL, MongoDB, ...) must implement this
// interface and register itself in the Registry.
type DatabaseAdapter interface {
	// Type returns the canonical database type identifier
	Type() dbcapabilities.DatabaseID

	// Capabilities returns the capability metadata for this database type
	Capabilities() dbcapabilities.Capability

	// Connect establishes a connection to a specific database. The returned
	// Connection has passed an initial connectivity check.
	Connect(ctx context.Context, config ConnectionConfig) (Connection, error)
}

// Connection represents an active connection to a specific database: the
// live engine instance wrapping one native driver connection or pool. A
// Connection is owned exclusively by the connection manager under its id;
// it is safe for concurrent use by multiple callers.
type Connection interface {
	// Identity and status
	ID() string
	Type() dbcapabilities.DatabaseID
	IsConnected() bool

	// Schema retrieves the list of tables or collections.
	Schema(ctx context.Context) (*dbmodel.Schema, error)

	// TableData fetches a page of rows from a table or collection.
	// Offset and limit are 0-based and non-negative; an offset past the end
	// of the table yields an empty row set, not an error.
	TableData(ctx context.Context, table string, offset, limit int64) (*dbmodel.QueryResult, error)

	// TableStructure retrieves column or field descriptors for a table.
	TableStructure(ctx context.Context, table string) (*dbmodel.TableStructure, error)

	// ExecuteQuery runs a backend-native query string (SQL text for
	// relational backends, an extended-JSON filter document for MongoDB).
	// Statements that return no rows yield an empty but well-formed result.
	ExecuteQuery(ctx context.Context, query string) (*dbmodel.QueryResult, error)

	// Ping performs the cheapest possible round-trip to the server.
	Ping(ctx context.Context) error

	// Close releases native resources. Idempotent; safe to call multiple times.
	Close() error

	// Raw returns the underlying database-specific connection object.
	// Type assertion is required when using Raw().
	Raw() interface{}

	// Config returns the configuration the connection was opened from.
	Config() ConnectionConfig

	// Adapter returns the adapter that produced this connection.
	Adapter() DatabaseAdapter
}

// TestConnection opens a short-lived connection for the given spec and
// reports reachability. A reachable server always yields true, even when
// later operations on it would fail; only a malformed spec produces an
// error.
func TestConnection(ctx context.Context, registry *Registry, config ConnectionConfig) (bool, error) {
	if err := config.Validate(); err != nil {
		return false, err
	}

	id, _ := config.DatabaseID()
	adp, err := registry.Get(id)
	if err != nil {
		return false, err
	}

	conn, err := adp.Connect(ctx, config)
	if err != nil {
		return false, nil
	}
	defer conn.Close()

	return conn.Ping(ctx) == nil, nil
}
