// Package service exposes the database operations as a single facade:
// argument validation, connection lookup, bounded execution through the
// bridge, and typed errors out. This is the surface a frontend or CLI
// talks to.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/opendevtool/dbbridge/internal/bridge"
	"github.com/opendevtool/dbbridge/internal/database"
	"github.com/opendevtool/dbbridge/pkg/adapter"
	"github.com/opendevtool/dbbridge/pkg/config"
	"github.com/opendevtool/dbbridge/pkg/dbmodel"
	"github.com/opendevtool/dbbridge/pkg/logger"
)

// Defaults applied when the config carries no value.
const (
	DefaultOperationTimeout = 30 * time.Second
	DefaultPageLimit        = 50
)

// Service coordinates the connection manager and the execution bridge.
type Service struct {
	manager *database.Manager
	bridge  *bridge.Bridge
	config  *config.Config
	logger  *logger.Logger
}

// New assembles a service. A nil config uses defaults for every setting.
func New(manager *database.Manager, cfg *config.Config, log *logger.Logger) *Service {
	if cfg == nil {
		cfg = config.New()
	}
	maxOps := cfg.GetInt(config.KeyMaxConcurrentOps, bridge.DefaultMaxConcurrent)
	if log != nil {
		manager.SetLogger(log)
	}
	return &Service{
		manager: manager,
		bridge:  bridge.New(int64(maxOps)),
		config:  cfg,
		logger:  log,
	}
}

// Manager exposes the underlying connection manager.
func (s *Service) Manager() *database.Manager {
	return s.manager
}

func (s *Service) operationTimeout() time.Duration {
	return s.config.GetDuration(config.KeyOperationTimeout, DefaultOperationTimeout)
}

func (s *Service) defaultPageLimit() int64 {
	return int64(s.config.GetInt(config.KeyDefaultPageLimit, DefaultPageLimit))
}

// run submits op through the bridge while holding an acquired connection.
// The release is invoked exactly once: by the op when it finishes, even
// after the caller's deadline passed, or here when the bridge never
// started it because no execution slot became available.
func run[T any](ctx context.Context, s *Service, release func(), op func(context.Context) (T, error)) (T, error) {
	result, err := bridge.Run(ctx, s.bridge, s.operationTimeout(), func(ctx context.Context) (T, error) {
		defer release()
		return op(ctx)
	})
	if errors.Is(err, bridge.ErrSlotWait) {
		release()
	}
	return result, err
}

// OpenConnection establishes a connection for the given spec and returns
// its id.
func (s *Service) OpenConnection(ctx context.Context, cfg adapter.ConnectionConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return s.manager.Connect(ctx, cfg)
}

// CloseConnection tears down a connection. Closing an unknown id is a
// no-op.
func (s *Service) CloseConnection(ctx context.Context, id string) error {
	return s.manager.Disconnect(ctx, id)
}

// CloseAll tears down every connection.
func (s *Service) CloseAll(ctx context.Context) error {
	return s.manager.DisconnectAll(ctx)
}

// ListConnections returns the ids of all open connections.
func (s *Service) ListConnections() []string {
	return s.manager.List()
}

// TestConnection probes whether the configured server is reachable without
// registering anything. A refused or unreachable server reports false
// with no error; only a malformed spec errors.
func (s *Service) TestConnection(ctx context.Context, cfg adapter.ConnectionConfig) (bool, error) {
	return bridge.Run(ctx, s.bridge, s.operationTimeout(), func(ctx context.Context) (bool, error) {
		return adapter.TestConnection(ctx, s.manager.Registry(), cfg)
	})
}

// GetSchema lists the tables or collections of a connected database.
func (s *Service) GetSchema(ctx context.Context, id string) (*dbmodel.Schema, error) {
	conn, release, err := s.manager.Acquire(id)
	if err != nil {
		return nil, err
	}
	return run(ctx, s, release, func(ctx context.Context) (*dbmodel.Schema, error) {
		return conn.Schema(ctx)
	})
}

// GetTableData fetches a page of rows. A zero limit falls back to the
// configured default page size; a negative offset or limit is rejected.
func (s *Service) GetTableData(ctx context.Context, id, table string, offset, limit int64) (*dbmodel.QueryResult, error) {
	if table == "" {
		return nil, adapter.NewInvalidArgumentError("table", "table name cannot be empty")
	}
	if offset < 0 {
		return nil, adapter.NewInvalidArgumentError("offset", "offset cannot be negative")
	}
	if limit < 0 {
		return nil, adapter.NewInvalidArgumentError("limit", "limit cannot be negative")
	}
	if limit == 0 {
		limit = s.defaultPageLimit()
	}

	conn, release, err := s.manager.Acquire(id)
	if err != nil {
		return nil, err
	}
	return run(ctx, s, release, func(ctx context.Context) (*dbmodel.QueryResult, error) {
		return conn.TableData(ctx, table, offset, limit)
	})
}

// GetTableStructure describes the columns or fields of a table.
func (s *Service) GetTableStructure(ctx context.Context, id, table string) (*dbmodel.TableStructure, error) {
	if table == "" {
		return nil, adapter.NewInvalidArgumentError("table", "table name cannot be empty")
	}

	conn, release, err := s.manager.Acquire(id)
	if err != nil {
		return nil, err
	}
	return run(ctx, s, release, func(ctx context.Context) (*dbmodel.TableStructure, error) {
		return conn.TableStructure(ctx, table)
	})
}

// ExecuteQuery runs a backend-native query string against a connection.
func (s *Service) ExecuteQuery(ctx context.Context, id, query string) (*dbmodel.QueryResult, error) {
	if query == "" {
		return nil, adapter.NewInvalidArgumentError("query", "query cannot be empty")
	}

	conn, release, err := s.manager.Acquire(id)
	if err != nil {
		return nil, err
	}
	return run(ctx, s, release, func(ctx context.Context) (*dbmodel.QueryResult, error) {
		return conn.ExecuteQuery(ctx, query)
	})
}

// Ping verifies that a connection is still alive.
func (s *Service) Ping(ctx context.Context, id string) error {
	conn, release, err := s.manager.Acquire(id)
	if err != nil {
		return err
	}
	_, err = run(ctx, s, release, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, conn.Ping(ctx)
	})
	return err
}
