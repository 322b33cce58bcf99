package postgres

import (
	"github.com/opendevtool/dbbridge/pkg/adapter"
)

func init() {
	// Register PostgreSQL adapter with the global registry
	adapter.Register(NewAdapter())
}
