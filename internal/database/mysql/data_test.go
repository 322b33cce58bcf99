package mysql

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"github.com/opendevtool/dbbridge/pkg/adapter"
)

func TestIsReadStatement(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"SELECT * FROM users", true},
		{"WITH t AS (SELECT 1) SELECT * FROM t", true},
		{"SHOW TABLES", true},
		{"EXPLAIN SELECT 1", true},
		{"DESCRIBE users", true},
		{"desc users", true},
		{"INSERT INTO users VALUES (1)", false},
		{"UPDATE users SET name = 'x'", false},
		{"TRUNCATE users", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isReadStatement(tt.query), "query: %q", tt.query)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`users`", quoteIdentifier("users"))
	assert.Equal(t, "`odd``name`", quoteIdentifier("odd`name"))
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(adapter.ConnectionConfig{
		ConnectionType: "mysql",
		Host:           "db.internal",
		Username:       "app",
		Password:       "secret",
		DatabaseName:   "appdb",
	})
	assert.Contains(t, dsn, "app:secret@tcp(db.internal:3306)/appdb")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestNormalizeValue(t *testing.T) {
	assert.Nil(t, normalizeValue(nil, "INT"))
	assert.Equal(t, int64(7), normalizeValue(int64(7), "BIGINT"))
	assert.Equal(t, "12.50", normalizeValue([]byte("12.50"), "DECIMAL"))
	assert.Equal(t, "hello", normalizeValue([]byte("hello"), "VARCHAR"))
	assert.Equal(t, `\x01ff`, normalizeValue([]byte{0x01, 0xff}, "BLOB"))

	got := normalizeValue([]byte(`{"a": 1}`), "JSON")
	raw, ok := got.(json.RawMessage)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a": 1}`, string(raw))

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01T12:00:00Z", normalizeValue(ts, "DATETIME"))
}

func TestMapErrorNoSuchTable(t *testing.T) {
	err := mapError("get_table_data", &mysql.MySQLError{Number: 1146, Message: "Table 'appdb.nope' doesn't exist"})
	assert.True(t, adapter.IsNotFound(err))
}

func TestMapErrorParseError(t *testing.T) {
	err := mapError("execute_query", &mysql.MySQLError{Number: 1064, Message: "You have an error in your SQL syntax"})
	assert.True(t, adapter.IsQuerySyntax(err))
}

func TestMapErrorInvalidConn(t *testing.T) {
	err := mapError("ping", mysql.ErrInvalidConn)
	assert.True(t, adapter.IsConnectionError(err))
}

func TestMapErrorGeneric(t *testing.T) {
	err := mapError("execute_query", errors.New("boom"))
	assert.ErrorIs(t, err, adapter.ErrDriver)
}
