package dbmodel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryResultValidate(t *testing.T) {
	ok := QueryResult{
		Columns: []string{"id", "name"},
		Rows: [][]interface{}{
			{int64(1), "ada"},
			{int64(2), nil},
		},
	}
	assert.NoError(t, ok.Validate())

	ragged := QueryResult{
		Columns: []string{"id", "name"},
		Rows: [][]interface{}{
			{int64(1)},
		},
	}
	assert.Error(t, ragged.Validate())

	empty := QueryResult{Columns: []string{}, Rows: [][]interface{}{}}
	assert.NoError(t, empty.Validate())
}

func TestOpaqueJSON(t *testing.T) {
	got := OpaqueJSON(map[string]interface{}{"a": 1})
	raw, ok := got.(json.RawMessage)
	require.True(t, ok)
	assert.JSONEq(t, `{"a": 1}`, string(raw))
}

func TestOpaqueJSONUnmarshalable(t *testing.T) {
	// Values json cannot encode still become a string cell, never a panic.
	got := OpaqueJSON(func() {})
	_, isString := got.(string)
	assert.True(t, isString)
}

func TestHelpers(t *testing.T) {
	n := Int64Ptr(42)
	require.NotNil(t, n)
	assert.Equal(t, int64(42), *n)

	s := StringPtr("now()")
	require.NotNil(t, s)
	assert.Equal(t, "now()", *s)
}
