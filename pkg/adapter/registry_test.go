package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
)

type testAdapter struct {
	id dbcapabilities.DatabaseID
}

func (a *testAdapter) Type() dbcapabilities.DatabaseID { return a.id }

func (a *testAdapter) Capabilities() dbcapabilities.Capability {
	return dbcapabilities.MustGet(a.id)
}

func (a *testAdapter) Connect(ctx context.Context, cfg ConnectionConfig) (Connection, error) {
	return nil, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&testAdapter{id: dbcapabilities.PostgreSQL})

	adp, err := r.Get(dbcapabilities.PostgreSQL)
	require.NoError(t, err)
	assert.Equal(t, dbcapabilities.PostgreSQL, adp.Type())
	assert.True(t, r.IsRegistered(dbcapabilities.PostgreSQL))
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get(dbcapabilities.MongoDB)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryGetByNameResolvesAliases(t *testing.T) {
	r := NewRegistry()
	r.Register(&testAdapter{id: dbcapabilities.PostgreSQL})

	for _, name := range []string{"postgres", "postgresql", "pgsql"} {
		adp, err := r.GetByName(name)
		require.NoError(t, err, "name: %s", name)
		assert.Equal(t, dbcapabilities.PostgreSQL, adp.Type())
	}

	_, err := r.GetByName("not-a-database")
	assert.Error(t, err)
}

func TestRegistryListRegistered(t *testing.T) {
	r := NewRegistry()
	r.Register(&testAdapter{id: dbcapabilities.PostgreSQL})
	r.Register(&testAdapter{id: dbcapabilities.MongoDB})

	assert.ElementsMatch(t,
		[]dbcapabilities.DatabaseID{dbcapabilities.PostgreSQL, dbcapabilities.MongoDB},
		r.ListRegistered())
}

func TestRegistryConnectValidatesFirst(t *testing.T) {
	r := NewRegistry()
	r.Register(&testAdapter{id: dbcapabilities.PostgreSQL})

	_, err := r.Connect(context.Background(), ConnectionConfig{
		ConnectionType: "postgres",
		DatabaseName:   "appdb",
		// Host missing
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
