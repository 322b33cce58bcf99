package mysql

import (
	"context"

	"github.com/opendevtool/dbbridge/pkg/adapter"
	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
	"github.com/opendevtool/dbbridge/pkg/dbmodel"
)

// Schema lists tables and views in the connected database with estimated
// row counts from the statistics tables. Views carry no estimate.
func (c *Connection) Schema(ctx context.Context) (*dbmodel.Schema, error) {
	const query = `
		SELECT TABLE_NAME, TABLE_TYPE, TABLE_ROWS
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ?
		ORDER BY TABLE_NAME
	`

	rows, err := c.db.QueryContext(ctx, query, c.config.DatabaseName)
	if err != nil {
		return nil, mapError("get_schema", err)
	}
	defer rows.Close()

	schema := &dbmodel.Schema{Tables: []dbmodel.TableInfo{}}
	for rows.Next() {
		var name, tableType string
		var estimate *int64
		if err := rows.Scan(&name, &tableType, &estimate); err != nil {
			return nil, mapError("get_schema", err)
		}

		kind := dbmodel.KindTable
		if tableType == "VIEW" {
			kind = dbmodel.KindView
			estimate = nil
		}
		schema.Tables = append(schema.Tables, dbmodel.TableInfo{
			Name:     name,
			Schema:   c.config.DatabaseName,
			Kind:     kind,
			RowCount: estimate,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("get_schema", err)
	}

	return schema, nil
}

// TableStructure describes the columns of a table, including primary key
// membership and defaults.
func (c *Connection) TableStructure(ctx context.Context, table string) (*dbmodel.TableStructure, error) {
	const query = `
		SELECT COLUMN_NAME,
		       COLUMN_TYPE,
		       IS_NULLABLE = 'YES',
		       COLUMN_DEFAULT,
		       COLUMN_KEY = 'PRI'
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`

	rows, err := c.db.QueryContext(ctx, query, c.config.DatabaseName, table)
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

	if len(structure.Columns) == 0 {
		return nil, adapter.NewNotFoundError(dbcapabilities.MySQL, "table", table)
	}

	return structure, nil
}
