package mongodb

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/opendevtool/dbbridge/pkg/dbmodel"
)

// structureSampleSize bounds how many documents are inspected when
// inferring a collection's field layout.
const structureSampleSize = 100

// Schema lists all collections with estimated document counts. The
// estimate comes from collection metadata, not a full scan.
func (c *Connection) Schema(ctx context.Context) (*dbmodel.Schema, error) {
	names, err := c.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, mapError("get_schema", err)
	}
	sort.Strings(names)

	schema := &dbmodel.Schema{Tables: []dbmodel.TableInfo{}}
	for _, name := range names {
		count, err := c.db.Collection(name).EstimatedDocumentCount(ctx)
		if err != nil {
			return nil, mapError("get_schema", err)
		}
		schema.Tables = append(schema.Tables, dbmodel.TableInfo{
			Name:     name,
			Schema:   c.db.Name(),
			Kind:     dbmodel.KindCollection,
			RowCount: dbmodel.Int64Ptr(count),
		})
	}
	return schema, nil
}

// TableStructure infers a collection's field layout by sampling documents.
// MongoDB has no declared schema, so field names, types, and optionality
// are derived from what the sample actually contains. Collections that do
// not exist simply yield an empty sample and therefore no fields.
func (c *Connection) TableStructure(ctx context.Context, table string) (*dbmodel.TableStructure, error) {
	cursor, err := c.db.Collection(table).Find(ctx, bson.D{},
		options.Find().SetLimit(structureSampleSize))
	if err != nil {
		return nil, mapError("get_table_structure", err)
	}
	defer cursor.Close(ctx)

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapError("get_table_structure", err)
	}

	return &dbmodel.TableStructure{
		TableName: table,
		Columns:   inferFields(docs),
	}, nil
}

// inferFields computes the union of fields across the sampled documents.
// A field's type is the single BSON type observed, or "mixed" when
// documents disagree; a field absent from some document is nullable. The
// _id field always sorts first, the rest alphabetically.
func inferFields(docs []bson.D) []dbmodel.ColumnInfo {
	type fieldStats struct {
		types map[string]bool
		seen  int
	}

	stats := make(map[string]*fieldStats)
	order := []string{}
	for _, doc := range docs {
		for _, elem := range doc {
			fs, ok := stats[elem.Key]
			if !ok {
				fs = &fieldStats{types: make(map[string]bool)}
				stats[elem.Key] = fs
				order = append(order, elem.Key)
			}
			fs.seen++
			fs.types[bsonTypeName(elem.Value)] = true
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i] == "_id" {
			return true
		}
		if order[j] == "_id" {
			return false
		}
		return order[i] < order[j]
	})

	columns := make([]dbmodel.ColumnInfo, 0, len(order))
	for _, name := range order {
		fs := stats[name]
		columns = append(columns, dbmodel.ColumnInfo{
			Name:       name,
			DataType:   fieldType(fs.types),
			Nullable:   fs.seen < len(docs) || fs.types["null"],
			PrimaryKey: name == "_id",
		})
	}
	return columns
}

// fieldType collapses the set of observed BSON type names into one label.
// Null observations do not count against an otherwise uniform type; they
// surface through nullability instead.
func fieldType(types map[string]bool) string {
	nonNull := []string{}
	for t := range types {
		if t != "null" {
			nonNull = append(nonNull, t)
		}
	}
	switch len(nonNull) {
	case 0:
		return "null"
	case 1:
		return nonNull[0]
	default:
		return "mixed"
	}
}

// bsonTypeName names a decoded BSON value's type the way the mongo shell
// does.
func bsonTypeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int32:
		return "int"
	case int64:
		return "long"
	case float64:
		return "double"
	case string:
		return "string"
	case bson.ObjectID:
		return "objectId"
	case bson.DateTime:
		return "date"
	case bson.Decimal128:
		return "decimal"
	case bson.Binary:
		return "binData"
	case bson.Timestamp:
		return "timestamp"
	case bson.Regex:
		return "regex"
	case bson.A:
		return "array"
	case bson.D, bson.M:
		return "object"
	default:
		return "unknown"
	}
}
