package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/opendevtool/dbbridge/pkg/adapter"
	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
)

// mapError translates a pgx error into the typed adapter errors. SQLSTATE
// class 42 covers syntax errors and unknown objects; class 08 covers
// connection failures.
func mapError(operation string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return adapter.NewDatabaseError(dbcapabilities.PostgreSQL, operation, adapter.ErrTimeout, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "42P01" && operation != "execute_query":
			// undefined_table. For ad-hoc statements the table name is
			// the caller's text, not one of ours, so it falls through to
			// the syntax class below.
			return adapter.NewNotFoundError(dbcapabilities.PostgreSQL, "table", pgErr.Message)
		case strings.HasPrefix(pgErr.Code, "42"):
			return adapter.NewDatabaseError(dbcapabilities.PostgreSQL, operation, adapter.ErrQuerySyntax, err)
		case strings.HasPrefix(pgErr.Code, "08"):
			return adapter.NewConnectionError(dbcapabilities.PostgreSQL, "", 0, err)
		}
	}

	return adapter.WrapError(dbcapabilities.PostgreSQL, operation, err)
}
