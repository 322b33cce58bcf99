// Package database manages the lifecycle of adapter-based database
// connections. All business logic lives in the adapters; the manager only
// tracks connections by id, hands them out to callers, and coordinates
// teardown against in-flight operations.
package database

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/opendevtool/dbbridge/pkg/adapter"
	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
	"github.com/opendevtool/dbbridge/pkg/logger"
)

// managedConnection pairs an adapter connection with the bookkeeping needed
// to drain it safely: a WaitGroup counting in-flight operations and a flag
// that rejects new acquisitions once a disconnect has begun.
type managedConnection struct {
	conn     adapter.Connection
	inflight sync.WaitGroup
	closing  atomic.Bool
}

// Manager owns the map of live connections. Each id maps to exactly one
// connection; connecting never disturbs other entries, and a failed connect
// registers nothing.
type Manager struct {
	connections map[string]*managedConnection
	registry    *adapter.Registry
	counter     atomic.Uint64
	mu          sync.RWMutex
	logger      *logger.Logger
}

// NewManager creates a Manager backed by the given adapter registry.
// Passing nil uses the process-global registry.
func NewManager(registry *adapter.Registry) *Manager {
	if registry == nil {
		registry = adapter.GlobalRegistry()
	}
	return &Manager{
		connections: make(map[string]*managedConnection),
		registry:    registry,
	}
}

// Registry returns the adapter registry the manager connects through.
func (m *Manager) Registry() *adapter.Registry {
	return m.registry
}

// SetLogger sets the logger for the manager
func (m *Manager) SetLogger(logger *logger.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// safeLog safely logs a message if logger is available
func (m *Manager) safeLog(level string, format string, args ...interface{}) {
	if m.logger != nil {
		switch level {
		case "info":
			m.logger.Info(format, args...)
		case "error":
			m.logger.Error(format, args...)
		case "warn":
			m.logger.Warn(format, args...)
		case "debug":
			m.logger.Debug(format, args...)
		}
	}
}

// nextID allocates a process-unique connection id. Ids are never reused
// within a manager's lifetime.
func (m *Manager) nextID() string {
	return fmt.Sprintf("conn-%d", m.counter.Add(1))
}

// Connect establishes a new database connection and registers it under a
// freshly allocated id, which it returns. If cfg carries a ConnectionID it
// is used instead; connecting over an id that is already registered is
// rejected. On any failure nothing is registered.
func (m *Manager) Connect(ctx context.Context, cfg adapter.ConnectionConfig) (string, error) {
	id := cfg.ConnectionID
	if id == "" {
		id = m.nextID()
		cfg.ConnectionID = id
	}

	m.mu.RLock()
	_, exists := m.connections[id]
	m.mu.RUnlock()
	if exists {
		return "", adapter.NewConfigurationError(dbcapabilities.DatabaseID(cfg.ConnectionType),
			"connection_id", fmt.Sprintf("connection %q already exists", id))
	}

	m.safeLog("info", "Connecting to database %s (type: %s)", id, cfg.ConnectionType)

	conn, err := m.registry.Connect(ctx, cfg)
	if err != nil {
		m.safeLog("error", "Failed to connect to database %s: %v", id, err)
		return "", err
	}

	m.mu.Lock()
	if _, raced := m.connections[id]; raced {
		m.mu.Unlock()
		conn.Close()
		return "", adapter.NewConfigurationError(dbcapabilities.DatabaseID(cfg.ConnectionType),
			"connection_id", fmt.Sprintf("connection %q already exists", id))
	}
	m.connections[id] = &managedConnection{conn: conn}
	m.mu.Unlock()

	m.safeLog("info", "Successfully connected to database %s", id)
	return id, nil
}

// Acquire looks up a connection and marks an operation in flight on it.
// The caller must invoke release exactly once when the operation finishes.
// Connections that are mid-disconnect reject new acquisitions.
func (m *Manager) Acquire(id string) (adapter.Connection, func(), error) {
	m.mu.RLock()
	mc, exists := m.connections[id]
	m.mu.RUnlock()

	if !exists {
		return nil, nil, &adapter.NotFoundError{
			ResourceType: "connection",
			ResourceName: id,
		}
	}
	if mc.closing.Load() {
		return nil, nil, adapter.NewConnectionError("", "", 0,
			fmt.Errorf("connection %q is shutting down", id))
	}

	mc.inflight.Add(1)
	// Re-check after registering: a disconnect that set the flag between
	// the load above and the Add must not be able to miss this operation,
	// and this operation must not run against a closing connection.
	if mc.closing.Load() {
		mc.inflight.Done()
		return nil, nil, adapter.NewConnectionError("", "", 0,
			fmt.Errorf("connection %q is shutting down", id))
	}

	var once sync.Once
	release := func() {
		once.Do(mc.inflight.Done)
	}
	return mc.conn, release, nil
}

// Get returns the connection registered under id without marking an
// operation in flight. Intended for inspection (config, connectivity flag),
// not for running operations.
func (m *Manager) Get(id string) (adapter.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mc, exists := m.connections[id]
	if !exists {
		return nil, &adapter.NotFoundError{
			ResourceType: "connection",
			ResourceName: id,
		}
	}
	return mc.conn, nil
}

// Disconnect removes a connection and closes it after all in-flight
// operations on it have completed. Disconnecting an unknown id is a no-op.
func (m *Manager) Disconnect(ctx context.Context, id string) error {
	m.mu.Lock()
	mc, exists := m.connections[id]
	if exists {
		delete(m.connections, id)
	}
	m.mu.Unlock()

	if !exists {
		m.safeLog("debug", "Disconnect of unknown connection %s ignored", id)
		return nil
	}

	m.safeLog("info", "Disconnecting database %s", id)

	mc.closing.Store(true)
	mc.inflight.Wait()

	if err := mc.conn.Close(); err != nil {
		m.safeLog("error", "Error closing connection %s: %v", id, err)
		return err
	}

	m.safeLog("info", "Successfully disconnected database %s", id)
	return nil
}

// DisconnectAll closes every connection, waiting for in-flight operations
// on each. Close errors are aggregated; every connection is removed from
// the map regardless.
func (m *Manager) DisconnectAll(ctx context.Context) error {
	m.mu.Lock()
	drained := m.connections
	m.connections = make(map[string]*managedConnection)
	m.mu.Unlock()

	m.safeLog("info", "Disconnecting all connections")

	var errs []error
	for id, mc := range drained {
		mc.closing.Store(true)
		mc.inflight.Wait()
		if err := mc.conn.Close(); err != nil {
			m.safeLog("error", "Error closing connection %s: %v", id, err)
			errs = append(errs, fmt.Errorf("failed to close %s: %w", id, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during disconnect: %v", errs)
	}

	m.safeLog("info", "All connections disconnected")
	return nil
}

// List returns the ids of all registered connections.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.connections))
	for id := range m.connections {
		ids = append(ids, id)
	}
	return ids
}

// ConnectionInfo returns a snapshot of connection metadata for inspection.
func (m *Manager) ConnectionInfo(id string) (map[string]interface{}, error) {
	conn, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	config := conn.Config()
	return map[string]interface{}{
		"connection_id":   id,
		"type":            string(conn.Type()),
		"host":            config.Host,
		"port":            config.EffectivePort(),
		"database_name":   config.DatabaseName,
		"is_connected":    conn.IsConnected(),
		"connection_type": config.ConnectionType,
	}, nil
}

// CheckHealth pings a connection to verify it is alive.
func (m *Manager) CheckHealth(ctx context.Context, id string) error {
	conn, release, err := m.Acquire(id)
	if err != nil {
		return err
	}
	defer release()

	if !conn.IsConnected() {
		return fmt.Errorf("database %s is disconnected", id)
	}
	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}
