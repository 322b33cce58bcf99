package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/opendevtool/dbbridge/pkg/adapter"
)

func TestIsReadStatement(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"SELECT * FROM users", true},
		{"  select 1", true},
		{"WITH t AS (SELECT 1) SELECT * FROM t", true},
		{"SHOW server_version", true},
		{"EXPLAIN SELECT 1", true},
		{"TABLE users", true},
		{"VALUES (1), (2)", true},
		{"select\n*\nfrom users", true},
		{"INSERT INTO users VALUES (1)", false},
		{"UPDATE users SET name = 'x'", false},
		{"DELETE FROM users", false},
		{"CREATE TABLE t (id int)", false},
		{"DROP TABLE t", false},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isReadStatement(tt.query), "query: %q", tt.query)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"users"`, quoteIdentifier("users"))
	assert.Equal(t, `"weird""name"`, quoteIdentifier(`weird"name`))
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, `"public"."users"`, quoteTableName("users"))
	assert.Equal(t, `"audit"."events"`, quoteTableName("audit.events"))
	assert.Equal(t, `"public"."odd;name"`, quoteTableName("odd;name"))
}

func TestSplitTableName(t *testing.T) {
	schema, table := splitTableName("users")
	assert.Equal(t, "public", schema)
	assert.Equal(t, "users", table)

	schema, table = splitTableName("audit.events")
	assert.Equal(t, "audit", schema)
	assert.Equal(t, "events", table)
}

func TestNormalizeValue(t *testing.T) {
	assert.Nil(t, normalizeValue(nil))
	assert.Equal(t, true, normalizeValue(true))
	assert.Equal(t, int64(7), normalizeValue(int32(7)))
	assert.Equal(t, int64(7), normalizeValue(int64(7)))
	assert.Equal(t, float64(1.5), normalizeValue(float32(1.5)))
	assert.Equal(t, "hello", normalizeValue("hello"))
	assert.Equal(t, `\x0102`, normalizeValue([]byte{1, 2}))

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01T12:00:00Z", normalizeValue(ts))
}

func TestMapErrorUndefinedTable(t *testing.T) {
	err := mapError("get_table_data", &pgconn.PgError{Code: "42P01", Message: `relation "nope" does not exist`})
	assert.True(t, adapter.IsNotFound(err))
}

func TestMapErrorUndefinedTableInAdHocQuery(t *testing.T) {
	// The table name in an ad-hoc statement is the caller's text, so a
	// missing relation is a problem with the statement, not a lookup miss.
	err := mapError("execute_query", &pgconn.PgError{Code: "42P01", Message: `relation "nope" does not exist`})
	assert.True(t, adapter.IsQuerySyntax(err))
	assert.False(t, adapter.IsNotFound(err))
}

func TestMapErrorSyntax(t *testing.T) {
	err := mapError("execute_query", &pgconn.PgError{Code: "42601", Message: "syntax error at or near"})
	assert.True(t, adapter.IsQuerySyntax(err))
	assert.False(t, adapter.IsNotFound(err))
}

func TestMapErrorConnectionClass(t *testing.T) {
	err := mapError("ping", &pgconn.PgError{Code: "08006", Message: "connection failure"})
	assert.True(t, adapter.IsConnectionError(err))
}

func TestMapErrorGeneric(t *testing.T) {
	err := mapError("execute_query", errors.New("boom"))
	assert.ErrorIs(t, err, adapter.ErrDriver)
}
