package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/opendevtool/dbbridge/pkg/adapter"
	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
)

// mapError translates a mongo driver error into the typed adapter errors.
func mapError(operation string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return adapter.NewDatabaseError(dbcapabilities.MongoDB, operation, adapter.ErrTimeout, err)
	}
	if mongo.IsTimeout(err) {
		return adapter.NewDatabaseError(dbcapabilities.MongoDB, operation, adapter.ErrTimeout, err)
	}
	if mongo.IsNetworkError(err) {
		return adapter.NewConnectionError(dbcapabilities.MongoDB, "", 0, err)
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 26: // NamespaceNotFound
			return adapter.NewNotFoundError(dbcapabilities.MongoDB, "collection", cmdErr.Message)
		case 2: // BadValue
			return adapter.NewDatabaseError(dbcapabilities.MongoDB, operation, adapter.ErrQuerySyntax, err)
		}
	}

	return adapter.WrapError(dbcapabilities.MongoDB, operation, err)
}
