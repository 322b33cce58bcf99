package mysql

import (
	"context"
	"errors"
	"net"

	"github.com/go-sql-driver/mysql"

	"github.com/opendevtool/dbbridge/pkg/adapter"
	"github.com/opendevtool/dbbridge/pkg/dbcapabilities"
)

// Server error numbers this adapter cares about.
const (
	errParseError     = 1064 // ER_PARSE_ERROR
	errNoSuchTable    = 1146 // ER_NO_SUCH_TABLE
	errBadDB          = 1049 // ER_BAD_DB_ERROR
	errBadField       = 1054 // ER_BAD_FIELD_ERROR
	errTooLongIdent   = 1059 // ER_TOO_LONG_IDENT
	errWrongTableName = 1103 // ER_WRONG_TABLE_NAME
)

// mapError translates a go-sql-driver error into the typed adapter errors.
func mapError(operation string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return adapter.NewDatabaseError(dbcapabilities.MySQL, operation, adapter.ErrTimeout, err)
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case errNoSuchTable:
			return adapter.NewNotFoundError(dbcapabilities.MySQL, "table", mysqlErr.Message)
		case errBadDB:
			return adapter.NewNotFoundError(dbcapabilities.MySQL, "database", mysqlErr.Message)
		case errParseError, errBadField, errTooLongIdent, errWrongTableName:
			return adapter.NewDatabaseError(dbcapabilities.MySQL, operation, adapter.ErrQuerySyntax, err)
		}
		return adapter.WrapError(dbcapabilities.MySQL, operation, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, mysql.ErrInvalidConn) {
		return adapter.NewConnectionError(dbcapabilities.MySQL, "", 0, err)
	}

	return adapter.WrapError(dbcapabilities.MySQL, operation, err)
}
