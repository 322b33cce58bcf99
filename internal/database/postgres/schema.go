package postgres

import (
	"context"
	"strings"

	"github.com/opendevtool/dbbridge/pkg/adapter"
	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
	"github.com/opendevtool/dbbridge/pkg/dbmodel"
)

// Schema lists all user tables, views, and materialized views with their
// estimated row counts. System schemas are excluded. Row counts come from
// the planner statistics, so they are approximate and absent for relations
// that were never analyzed.
func (c *Connection) Schema(ctx context.Context) (*dbmodel.Schema, error) {
	const query = `
		SELECT n.nspname,
		       c.relname,
		       CASE c.relkind
		            WHEN 'r' THEN 'table'
		            WHEN 'p' THEN 'table'
		            WHEN 'v' THEN 'view'
		            WHEN 'm' THEN 'materialized_view'
		       END AS kind,
		       CASE WHEN c.relkind IN ('r', 'p', 'm') THEN c.reltuples::bigint ELSE NULL END
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind IN ('r', 'p', 'v', 'm')
		  AND n.nspname NOT IN ('pg_catalog', 'information_schema')
		  AND n.nspname NOT LIKE 'pg_toast%'
		ORDER BY n.nspname, c.relname
	`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, mapError("get_schema", err)
	}
	defer rows.Close()

	schema := &dbmodel.Schema{Tables: []dbmodel.TableInfo{}}
	for rows.Next() {
		var info dbmodel.TableInfo
		var estimate *int64
		if err := rows.Scan(&info.Schema, &info.Name, &info.Kind, &estimate); err != nil {
			return nil, mapError("get_schema", err)
		}
		// reltuples is -1 until the relation has been analyzed.
		if estimate != nil && *estimate >= 0 {
			info.RowCount = estimate
		}
		schema.Tables = append(schema.Tables, info)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("get_schema", err)
	}

	return schema, nil
}

// TableStructure describes the columns of a table, including primary key
// membership and defaults. The table name may be schema-qualified; an
// unqualified name resolves against the public schema.
func (c *Connection) TableStructure(ctx context.Context, table string) (*dbmodel.TableStructure, error) {
	schemaName, tableName := splitTableName(table)

	const query = `
		SELECT c.column_name,
		       c.data_type,
		       c.is_nullable = 'YES' AS nullable,
		       c.column_default,
		       COALESCE(pk.is_pk, false) AS primary_key
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT kcu.column_name, true AS is_pk
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON tc.constraint_name = kcu.constraint_name
			 AND tc.table_schema = kcu.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY'
			  AND tc.table_schema = $1
			  AND tc.table_name = $2
		) pk ON pk.column_name = c.column_name
		WHERE c.table_schema = $1
		  AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := c.pool.Query(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, mapError("get_table_structure", err)
	}
	defer rows.Close()

	structure := &dbmodel.TableStructure{TableName: table}
	for rows.Next() {
		var col dbmodel.ColumnInfo
		if err := rows.Scan(&col.Name, &col.DataType, &col.Nullable, &col.Default, &col.PrimaryKey); err != nil {
			return nil, mapError("get_table_structure", err)
		}
		structure.Columns = append(structure.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("get_table_structure", err)
	}

	// information_schema yields no rows for unknown tables rather than an
	// error, so surface that as not-found here.
	if len(structure.Columns) == 0 {
		return nil, adapter.NewNotFoundError(dbcapabilities.PostgreSQL, "table", table)
	}

	return structure, nil
}

// splitTableName splits an optionally schema-qualified table name into its
// schema and relation parts.
func splitTableName(table string) (string, string) {
	if i := strings.IndexByte(table, '.'); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "public", table
}
