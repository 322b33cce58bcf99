package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/opendevtool/dbbridge/pkg/dbmodel"
)

// TableData fetches one page of rows from a table along with the total row
// count, so callers can page without issuing their own COUNT.
func (c *Connection) TableData(ctx context.Context, table string, offset, limit int64) (*dbmodel.QueryResult, error) {
	start := time.Now()
	quoted := quoteTableName(table)

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted)
	if err := c.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, mapError("get_table_data", err)
	}

	dataQuery := fmt.Sprintf("SELECT * FROM %s OFFSET $1 LIMIT $2", quoted)
	rows, err := c.pool.Query(ctx, dataQuery, offset, limit)
	if err != nil {
		return nil, mapError("get_table_data", err)
	}

	result, err := collectRows(rows)
	if err != nil {
		return nil, mapError("get_table_data", err)
	}

	result.TotalRows = dbmodel.Int64Ptr(total)
	result.HasMore = offset+int64(len(result.Rows)) < total
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// ExecuteQuery runs an arbitrary SQL statement. Statements that read rows
// are executed through the query path; everything else goes through Exec
// and reports the affected row count.
func (c *Connection) ExecuteQuery(ctx context.Context, query string) (*dbmodel.QueryResult, error) {
	start := time.Now()

	if isReadStatement(query) {
		rows, err := c.pool.Query(ctx, query)
		if err != nil {
			return nil, mapError("execute_query", err)
		}
		result, err := collectRows(rows)
		if err != nil {
			return nil, mapError("execute_query", err)
		}
		result.ExecutionTime = time.Since(start)
		return result, nil
	}

	tag, err := c.pool.Exec(ctx, query)
	if err != nil {
		return nil, mapError("execute_query", err)
	}
	return &dbmodel.QueryResult{
		Columns:       []string{},
		Rows:          [][]interface{}{},
		AffectedRows:  tag.RowsAffected(),
		ExecutionTime: time.Since(start),
	}, nil
}

// readVerbs are the statement keywords that produce a row set.
var readVerbs = map[string]bool{
	"select":  true,
	"with":    true,
	"show":    true,
	"explain": true,
	"table":   true,
	"values":  true,
}

// isReadStatement reports whether the statement's leading keyword marks it
// as row-returning.
func isReadStatement(query string) bool {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return false
	}
	verb := trimmed
	if i := strings.IndexFunc(trimmed, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '(' || r == ';'
	}); i >= 0 {
		verb = trimmed[:i]
	}
	return readVerbs[strings.ToLower(verb)]
}

// quoteIdentifier quotes a single identifier, doubling any embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteTableName quotes an optionally schema-qualified table name part by
// part so that names from schema discovery are always safe to interpolate.
func quoteTableName(table string) string {
	schemaName, tableName := splitTableName(table)
	return quoteIdentifier(schemaName) + "." + quoteIdentifier(tableName)
}

// collectRows drains a pgx row set into a QueryResult with normalized
// cell values. It closes the rows.
func collectRows(rows pgx.Rows) (*dbmodel.QueryResult, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	result := &dbmodel.QueryResult{
		Columns: columns,
		Rows:    [][]interface{}{},
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make([]interface{}, len(values))
		for i, v := range values {
			row[i] = normalizeValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	return result, rows.Err()
}

// normalizeValue reduces driver-specific cell values to the portable set:
// nil, bool, int64, float64, string, or opaque JSON for structured values.
// NUMERIC is rendered as a string to avoid float precision loss.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return float64(val)
	case float64:
		return val
	case string:
		return val
	case []byte:
		return fmt.Sprintf("\\x%x", val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case pgtype.Numeric:
		return numericString(val)
	case [16]byte: // uuid
		return fmt.Sprintf("%x-%x-%x-%x-%x", val[0:4], val[4:6], val[6:8], val[8:10], val[10:16])
	default:
		// json, jsonb, arrays, composites, ranges
		return dbmodel.OpaqueJSON(val)
	}
}

// numericString renders a NUMERIC value as its exact decimal text.
func numericString(n pgtype.Numeric) interface{} {
	if !n.Valid {
		return nil
	}
	b, err := n.MarshalJSON()
	if err != nil {
		return nil
	}
	return strings.Trim(string(b), `"`)
}
