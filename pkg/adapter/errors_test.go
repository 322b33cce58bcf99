package adapter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
)

func TestDatabaseErrorMatchesKind(t *testing.T) {
	cause := errors.New("syntax error at or near")
	err := NewDatabaseError(dbcapabilities.PostgreSQL, "execute_query", ErrQuerySyntax, cause)

	assert.ErrorIs(t, err, ErrQuerySyntax)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)

	var dbErr *DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, dbcapabilities.PostgreSQL, dbErr.DatabaseType)
	assert.Equal(t, "execute_query", dbErr.Operation)
}

func TestConnectionErrorIs(t *testing.T) {
	err := NewConnectionError(dbcapabilities.MongoDB, "db.internal", 27017, errors.New("refused"))

	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.True(t, IsConnectionError(err))
	assert.Contains(t, err.Error(), "db.internal:27017")
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError(dbcapabilities.PostgreSQL, "table", "users")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "table", nf.ResourceType)
	assert.Equal(t, "users", nf.ResourceName)
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError(dbcapabilities.MySQL, "host", "host cannot be empty")

	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "host")
}

func TestInvalidArgumentError(t *testing.T) {
	err := NewInvalidArgumentError("offset", "offset cannot be negative")

	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "offset")
}

func TestWrapErrorAddsDriverKind(t *testing.T) {
	err := WrapError(dbcapabilities.PostgreSQL, "get_schema", errors.New("boom"))
	assert.ErrorIs(t, err, ErrDriver)
}

func TestWrapErrorKeepsTypedErrors(t *testing.T) {
	typed := NewNotFoundError(dbcapabilities.PostgreSQL, "table", "users")
	err := WrapError(dbcapabilities.PostgreSQL, "get_table_data", typed)

	// Already-typed errors pass through without picking up the driver kind.
	assert.True(t, IsNotFound(err))
	assert.NotErrorIs(t, err, ErrDriver)
}

func TestWrapErrorNil(t *testing.T) {
	assert.NoError(t, WrapError(dbcapabilities.PostgreSQL, "ping", nil))
}
