package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/opendevtool/dbbridge/pkg/adapter"
	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
	"github.com/opendevtool/dbbridge/pkg/dbmodel"
)

// defaultQueryLimit caps ad-hoc query results when the query document does
// not state its own limit.
const defaultQueryLimit = int64(100)

// findQuery is the parsed form of an ad-hoc MongoDB query document.
type findQuery struct {
	Collection string
	Filter     bson.D
	Limit      int64
}

// ExecuteQuery runs an ad-hoc find against the database. The query string
// is an extended-JSON document naming the target collection and an
// optional filter and limit:
//
//	{"collection": "users", "filter": {"age": {"$gt": 21}}, "limit": 50}
//
// A malformed document or a missing collection name is a query syntax
// error, never a crash.
func (c *Connection) ExecuteQuery(ctx context.Context, query string) (*dbmodel.QueryResult, error) {
	start := time.Now()

	fq, err := parseQuery(query)
	if err != nil {
		return nil, err
	}

	cursor, err := c.db.Collection(fq.Collection).Find(ctx, fq.Filter,
		options.Find().SetLimit(fq.Limit))
	if err != nil {
		return nil, mapError("execute_query", err)
	}
	defer cursor.Close(ctx)

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapError("execute_query", err)
	}

	result := tabulate(docs)
	result.HasMore = int64(len(docs)) == fq.Limit
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// parseQuery decodes the extended-JSON query document.
func parseQuery(query string) (*findQuery, error) {
	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(query), false, &doc); err != nil {
		return nil, adapter.NewDatabaseError(
			dbcapabilities.MongoDB,
			"execute_query",
			adapter.ErrQuerySyntax,
			fmt.Errorf("invalid query document: %w", err),
		)
	}

	fq := &findQuery{Filter: bson.D{}, Limit: defaultQueryLimit}
	for _, elem := range doc {
		switch elem.Key {
		case "collection":
			name, ok := elem.Value.(string)
			if !ok {
				return nil, queryError("\"collection\" must be a string")
			}
			fq.Collection = name
		case "filter":
			filter, ok := elem.Value.(bson.D)
			if !ok {
				return nil, queryError("\"filter\" must be a document")
			}
			fq.Filter = filter
		case "limit":
			switch n := elem.Value.(type) {
			case int32:
				fq.Limit = int64(n)
			case int64:
				fq.Limit = n
			case float64:
				fq.Limit = int64(n)
			default:
				return nil, queryError("\"limit\" must be a number")
			}
			if fq.Limit <= 0 {
				return nil, queryError("\"limit\" must be positive")
			}
		default:
			return nil, queryError(fmt.Sprintf("unknown query key %q", elem.Key))
		}
	}

	if fq.Collection == "" {
		return nil, queryError("query must name a collection")
	}
	return fq, nil
}

func queryError(reason string) error {
	return adapter.NewDatabaseError(
		dbcapabilities.MongoDB,
		"execute_query",
		adapter.ErrQuerySyntax,
		fmt.Errorf("%s", reason),
	)
}
