package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/opendevtool/dbbridge/pkg/dbmodel"
)

// TableData fetches one page of rows from a table along with the total row
// count.
func (c *Connection) TableData(ctx context.Context, table string, offset, limit int64) (*dbmodel.QueryResult, error) {
	start := time.Now()
	quoted := quoteIdentifier(table)

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted)
	if err := c.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, mapError("get_table_data", err)
	}

	dataQuery := fmt.Sprintf("SELECT * FROM %s LIMIT ? OFFSET ?", quoted)
	rows, err := c.db.QueryContext(ctx, dataQuery, limit, offset)
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

// ExecuteQuery runs an arbitrary SQL statement. Row-returning statements
// go through the query path; everything else reports its affected row
// count.
func (c *Connection) ExecuteQuery(ctx context.Context, query string) (*dbmodel.QueryResult, error) {
	start := time.Now()

	if isReadStatement(query) {
		rows, err := c.db.QueryContext(ctx, query)
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

	res, err := c.db.ExecContext(ctx, query)
	if err != nil {
		return nil, mapError("execute_query", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	return &dbmodel.QueryResult{
		Columns:       []string{},
		Rows:          [][]interface{}{},
		AffectedRows:  affected,
		ExecutionTime: time.Since(start),
	}, nil
}

// readVerbs are the statement keywords that produce a row set.
var readVerbs = map[string]bool{
	"select":   true,
	"with":     true,
	"show":     true,
	"explain":  true,
	"describe": true,
	"desc":     true,
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

// quoteIdentifier quotes an identifier with backticks, doubling any
// embedded backticks.
func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// collectRows drains a sql.Rows into a QueryResult with normalized cell
// values. It closes the rows.
func collectRows(rows *sql.Rows) (*dbmodel.QueryResult, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	result := &dbmodel.QueryResult{
		Columns: columns,
		Rows:    [][]interface{}{},
	}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make([]interface{}, len(columns))
		for i, v := range values {
			row[i] = normalizeValue(v, types[i].DatabaseTypeName())
		}
		result.Rows = append(result.Rows, row)
	}
	return result, rows.Err()
}

// normalizeValue reduces driver cell values to the portable set. The
// driver hands back []byte for most textual and numeric column types, so
// the declared column type decides how bytes are interpreted: DECIMAL
// keeps its exact text and JSON passes through as raw JSON.
func normalizeValue(v interface{}, dbType string) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		return val
	case int64:
		return val
	case float64:
		return val
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []byte:
		switch dbType {
		case "JSON":
			return json.RawMessage(val)
		case "BINARY", "VARBINARY", "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB":
			return fmt.Sprintf("\\x%x", val)
		default:
			// DECIMAL, CHAR, VARCHAR, TEXT and friends all arrive as
			// bytes holding their text form.
			return string(val)
		}
	default:
		return dbmodel.OpaqueJSON(val)
	}
}
