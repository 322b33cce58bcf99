package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendevtool/dbbridge/pkg/adapter"
	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
	"github.com/opendevtool/dbbridge/pkg/dbmodel"
)

type fakeAdapter struct {
	connectErr error
}

func (a *fakeAdapter) Type() dbcapabilities.DatabaseID {
	return dbcapabilities.PostgreSQL
}

func (a *fakeAdapter) Capabilities() dbcapabilities.Capability {
	return dbcapabilities.MustGet(dbcapabilities.PostgreSQL)
}

func (a *fakeAdapter) Connect(ctx context.Context, cfg adapter.ConnectionConfig) (adapter.Connection, error) {
	if a.connectErr != nil {
		return nil, a.connectErr
	}
	return &fakeConnection{id: cfg.ConnectionID, config: cfg, adapter: a}, nil
}

type fakeConnection struct {
	id      string
	config  adapter.ConnectionConfig
	adapter *fakeAdapter
	mu      sync.Mutex
	closed  int
}

func (c *fakeConnection) ID() string                       { return c.id }
func (c *fakeConnection) Type() dbcapabilities.DatabaseID  { return dbcapabilities.PostgreSQL }
func (c *fakeConnection) IsConnected() bool                { return c.closeCount() == 0 }
func (c *fakeConnection) Config() adapter.ConnectionConfig { return c.config }
func (c *fakeConnection) Adapter() adapter.DatabaseAdapter { return c.adapter }
func (c *fakeConnection) Raw() interface{}                 { return nil }
func (c *fakeConnection) Ping(ctx context.Context) error   { return nil }

func (c *fakeConnection) Schema(ctx context.Context) (*dbmodel.Schema, error) {
	return &dbmodel.Schema{}, nil
}

func (c *fakeConnection) TableData(ctx context.Context, table string, offset, limit int64) (*dbmodel.QueryResult, error) {
	return &dbmodel.QueryResult{}, nil
}

func (c *fakeConnection) TableStructure(ctx context.Context, table string) (*dbmodel.TableStructure, error) {
	return &dbmodel.TableStructure{TableName: table}, nil
}

func (c *fakeConnection) ExecuteQuery(ctx context.Context, query string) (*dbmodel.QueryResult, error) {
	return &dbmodel.QueryResult{}, nil
}

func (c *fakeConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func (c *fakeConnection) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func newTestManager(t *testing.T, adp adapter.DatabaseAdapter) *Manager {
	t.Helper()
	registry := adapter.NewRegistry()
	registry.Register(adp)
	return NewManager(registry)
}

func testConfig() adapter.ConnectionConfig {
	return adapter.ConnectionConfig{
		ConnectionType: "postgres",
		Host:           "localhost",
		DatabaseName:   "appdb",
	}
}

func TestConnectAssignsUniqueIDs(t *testing.T) {
	m := newTestManager(t, &fakeAdapter{})
	ctx := context.Background()

	id1, err := m.Connect(ctx, testConfig())
	require.NoError(t, err)
	id2, err := m.Connect(ctx, testConfig())
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	assert.ElementsMatch(t, []string{id1, id2}, m.List())
}

func TestConnectFailureRegistersNothing(t *testing.T) {
	m := newTestManager(t, &fakeAdapter{connectErr: errors.New("refused")})

	_, err := m.Connect(context.Background(), testConfig())
	require.Error(t, err)
	assert.Empty(t, m.List())
}

func TestConnectRejectsDuplicateID(t *testing.T) {
	m := newTestManager(t, &fakeAdapter{})
	ctx := context.Background()

	cfg := testConfig()
	cfg.ConnectionID = "primary"
	_, err := m.Connect(ctx, cfg)
	require.NoError(t, err)

	_, err = m.Connect(ctx, cfg)
	require.Error(t, err)
	var cfgErr *adapter.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Len(t, m.List(), 1)
}

func TestAcquireUnknownConnection(t *testing.T) {
	m := newTestManager(t, &fakeAdapter{})

	_, _, err := m.Acquire("missing")
	require.Error(t, err)
	var nfErr *adapter.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "connection", nfErr.ResourceType)
}

func TestDisconnectUnknownIsNoop(t *testing.T) {
	m := newTestManager(t, &fakeAdapter{})
	assert.NoError(t, m.Disconnect(context.Background(), "missing"))
}

func TestDisconnectClosesOnce(t *testing.T) {
	m := newTestManager(t, &fakeAdapter{})
	ctx := context.Background()

	id, err := m.Connect(ctx, testConfig())
	require.NoError(t, err)

	conn, err := m.Get(id)
	require.NoError(t, err)
	fc := conn.(*fakeConnection)

	require.NoError(t, m.Disconnect(ctx, id))
	assert.Equal(t, 1, fc.closeCount())
	assert.Empty(t, m.List())

	// Second disconnect of the same id is a no-op.
	require.NoError(t, m.Disconnect(ctx, id))
	assert.Equal(t, 1, fc.closeCount())
}

func TestDisconnectWaitsForInflight(t *testing.T) {
	m := newTestManager(t, &fakeAdapter{})
	ctx := context.Background()

	id, err := m.Connect(ctx, testConfig())
	require.NoError(t, err)

	conn, release, err := m.Acquire(id)
	require.NoError(t, err)
	fc := conn.(*fakeConnection)

	done := make(chan struct{})
	go func() {
		m.Disconnect(ctx, id)
		close(done)
	}()

	// Disconnect must not complete while the operation is in flight.
	select {
	case <-done:
		t.Fatal("disconnect completed before in-flight operation released")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, 0, fc.closeCount())

	release()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disconnect never completed after release")
	}
	assert.Equal(t, 1, fc.closeCount())
}

func TestAcquireRejectedDuringDisconnect(t *testing.T) {
	m := newTestManager(t, &fakeAdapter{})
	ctx := context.Background()

	id, err := m.Connect(ctx, testConfig())
	require.NoError(t, err)

	_, release, err := m.Acquire(id)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		m.Disconnect(ctx, id)
		close(done)
	}()

	// Wait for the entry to leave the map, then new acquisitions fail.
	require.Eventually(t, func() bool {
		_, _, err := m.Acquire(id)
		return err != nil
	}, time.Second, 5*time.Millisecond)

	release()
	<-done
}

func TestReleaseIsIdempotent(t *testing.T) {
	m := newTestManager(t, &fakeAdapter{})
	ctx := context.Background()

	id, err := m.Connect(ctx, testConfig())
	require.NoError(t, err)

	_, release, err := m.Acquire(id)
	require.NoError(t, err)
	release()
	release() // must not panic the WaitGroup

	require.NoError(t, m.Disconnect(ctx, id))
}

func TestDisconnectAll(t *testing.T) {
	m := newTestManager(t, &fakeAdapter{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := m.Connect(ctx, testConfig())
		require.NoError(t, err)
	}
	require.Len(t, m.List(), 3)

	require.NoError(t, m.DisconnectAll(ctx))
	assert.Empty(t, m.List())
}

func TestConnectionInfo(t *testing.T) {
	m := newTestManager(t, &fakeAdapter{})
	ctx := context.Background()

	cfg := testConfig()
	cfg.Host = "db.internal"
	id, err := m.Connect(ctx, cfg)
	require.NoError(t, err)

	info, err := m.ConnectionInfo(id)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", info["host"])
	assert.Equal(t, 5432, info["port"])
	assert.Equal(t, true, info["is_connected"])
}
