package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/opendevtool/dbbridge/pkg/dbmodel"
)

// TableData fetches one page of documents from a collection in natural
// order, flattened into a tabular result. The column set is the union of
// top-level fields across the page, with _id first; nested values appear
// as opaque JSON cells.
func (c *Connection) TableData(ctx context.Context, table string, offset, limit int64) (*dbmodel.QueryResult, error) {
	start := time.Now()
	coll := c.db.Collection(table)

	total, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, mapError("get_table_data", err)
	}

	cursor, err := coll.Find(ctx, bson.D{},
		options.Find().SetSkip(offset).SetLimit(limit))
	if err != nil {
		return nil, mapError("get_table_data", err)
	}
	defer cursor.Close(ctx)

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapError("get_table_data", err)
	}

	result := tabulate(docs)
	result.TotalRows = dbmodel.Int64Ptr(total)
	result.HasMore = offset+int64(len(result.Rows)) < total
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// tabulate flattens a list of documents into a column/row result. Columns
// are the union of top-level field names in first-seen order, except that
// _id always leads. Documents missing a column get a nil cell.
func tabulate(docs []bson.D) *dbmodel.QueryResult {
	columns := []string{}
	seen := map[string]bool{}
	for _, doc := range docs {
		for _, elem := range doc {
			if !seen[elem.Key] {
				seen[elem.Key] = true
				columns = append(columns, elem.Key)
			}
		}
	}
	// _id leads regardless of where it was first seen.
	for i, col := range columns {
		if col == "_id" && i != 0 {
			copy(columns[1:i+1], columns[:i])
			columns[0] = "_id"
			break
		}
	}

	index := make(map[string]int, len(columns))
	for i, col := range columns {
		index[col] = i
	}

	rows := make([][]interface{}, 0, len(docs))
	for _, doc := range docs {
		row := make([]interface{}, len(columns))
		for _, elem := range doc {
			row[index[elem.Key]] = normalizeValue(elem.Value)
		}
		rows = append(rows, row)
	}

	return &dbmodel.QueryResult{
		Columns: columns,
		Rows:    rows,
	}
}

// normalizeValue reduces decoded BSON values to the portable cell set.
// ObjectIDs become hex strings, dates become RFC 3339 strings, Decimal128
// keeps its exact text, and nested documents or arrays become opaque JSON.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		return val
	case int32:
		return int64(val)
	case int64:
		return val
	case float64:
		return val
	case string:
		return val
	case bson.ObjectID:
		return val.Hex()
	case bson.DateTime:
		return val.Time().UTC().Format(time.RFC3339Nano)
	case bson.Decimal128:
		return val.String()
	case bson.Binary:
		return fmt.Sprintf("\\x%x", val.Data)
	case bson.Timestamp:
		return int64(val.T)
	case bson.D, bson.A, bson.M:
		return dbmodel.OpaqueJSON(toPlain(val))
	default:
		return dbmodel.OpaqueJSON(val)
	}
}

// toPlain recursively converts BSON containers into plain maps and slices
// with normalized leaves, so they serialize as ordinary JSON.
func toPlain(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.D:
		m := make(map[string]interface{}, len(val))
		for _, elem := range val {
			m[elem.Key] = toPlain(elem.Value)
		}
		return m
	case bson.M:
		m := make(map[string]interface{}, len(val))
		for k, inner := range val {
			m[k] = toPlain(inner)
		}
		return m
	case bson.A:
		s := make([]interface{}, len(val))
		for i, inner := range val {
			s[i] = toPlain(inner)
		}
		return s
	case bson.ObjectID:
		return val.Hex()
	case bson.DateTime:
		return val.Time().UTC().Format(time.RFC3339Nano)
	case bson.Decimal128:
		return val.String()
	default:
		return val
	}
}
