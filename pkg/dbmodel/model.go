// Package dbmodel defines the backend-agnostic result model shared by all
// database adapters. Schema discovery, table structure inspection and query
// execution all normalize their native driver output into these types, so
// callers never depend on backend-specific result shapes.
package dbmodel

import (
	"encoding/json"
	"fmt"
	"time"
)

// Table kinds reported in Schema listings.
const (
	KindTable            = "table"
	KindView             = "view"
	KindMaterializedView = "materialized_view"
	KindCollection       = "collection"
)

// TableInfo describes a single table, view or collection.
type TableInfo struct {
	// Table or collection name
	Name string `json:"name"`
	// Namespace ("public" for PostgreSQL, empty for MongoDB)
	Schema string `json:"schema,omitempty"`
	// One of the Kind* constants
	Kind string `json:"kind"`
	// Approximate row/document count, nil when not cheaply available
	RowCount *int64 `json:"rowCount,omitempty"`
}

// Schema lists the tables or collections of a connected database in a
// stable order.
type Schema struct {
	Tables []TableInfo `json:"tables"`
}

// ColumnInfo describes a column or document field.
type ColumnInfo struct {
	Name string `json:"name"`
	// Declared type as a normalized string ("integer", "text", "ObjectId", ...).
	// SQL and document stores do not share a type system, so this is free-form
	// but deterministic per adapter.
	DataType string `json:"dataType"`
	Nullable bool   `json:"nullable"`
	// Whether the column is part of the primary key (_id for MongoDB)
	PrimaryKey bool `json:"primaryKey,omitempty"`
	// Default value expression, if any
	Default *string `json:"default,omitempty"`
}

// TableStructure describes the columns of a single table or collection.
type TableStructure struct {
	TableName string       `json:"tableName"`
	Columns   []ColumnInfo `json:"columns"`
}

// QueryResult is the normalized output of a table-data fetch or an ad-hoc
// query. Rows align positionally with Columns: every row holds exactly
// len(Columns) values. Each value is one of nil, bool, int64, float64,
// string, or json.RawMessage for nested/document values.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	// Rows affected by a write statement, zero for reads
	AffectedRows int64 `json:"affectedRows,omitempty"`
	// Total row count in the underlying table, nil unless cheaply known
	TotalRows *int64 `json:"totalRows,omitempty"`
	// Whether more rows exist beyond the requested page
	HasMore       bool          `json:"hasMore"`
	ExecutionTime time.Duration `json:"executionTime"`
}

// Validate checks the row-width invariant. Adapters call this before
// returning a result so malformed normalization is caught at the boundary
// rather than in a caller.
func (r *QueryResult) Validate() error {
	for i, row := range r.Rows {
		if len(row) != len(r.Columns) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(r.Columns))
		}
	}
	return nil
}

// Int64Ptr returns a pointer to v. Helper for the optional count fields.
func Int64Ptr(v int64) *int64 {
	return &v
}

// StringPtr returns a pointer to s, or nil if s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// OpaqueJSON marshals v into a json.RawMessage cell value. Adapters use it
// for nested structures (arrays, sub-documents, composite types) that have
// no scalar representation. Marshal failures degrade to a formatted string
// so a single odd value never fails a whole result set.
func OpaqueJSON(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return json.RawMessage(raw)
}
