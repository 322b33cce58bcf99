package dbcapabilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name string
		want DatabaseID
	}{
		{"postgres", PostgreSQL},
		{"postgresql", PostgreSQL},
		{"PGSQL", PostgreSQL},
		{"mysql", MySQL},
		{"MariaDB", MySQL},
		{"mongodb", MongoDB},
		{"mongo", MongoDB},
	}
	for _, tt := range tests {
		id, ok := ParseID(tt.name)
		require.True(t, ok, "name: %s", tt.name)
		assert.Equal(t, tt.want, id)
	}

	_, ok := ParseID("sqlite")
	assert.False(t, ok)
}

func TestDefaultPorts(t *testing.T) {
	assert.Equal(t, 5432, DefaultPort(PostgreSQL))
	assert.Equal(t, 3306, DefaultPort(MySQL))
	assert.Equal(t, 27017, DefaultPort(MongoDB))
}

func TestParadigms(t *testing.T) {
	assert.True(t, SupportsParadigm(PostgreSQL, ParadigmRelational))
	assert.False(t, SupportsParadigm(PostgreSQL, ParadigmDocument))
	assert.True(t, SupportsParadigm(MongoDB, ParadigmDocument))
}

func TestGet(t *testing.T) {
	cap, ok := Get(MySQL)
	require.True(t, ok)
	assert.Equal(t, "MySQL", cap.Name)

	_, ok = Get(DatabaseID("sqlite"))
	assert.False(t, ok)
}

func TestIDsCoverRegistry(t *testing.T) {
	ids := IDs()
	assert.ElementsMatch(t, []DatabaseID{PostgreSQL, MySQL, MongoDB}, ids)
}
