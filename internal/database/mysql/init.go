package mysql

import (
	"github.com/opendevtool/dbbridge/pkg/adapter"
)

func init() {
	// Register MySQL adapter with the global registry
	adapter.Register(NewAdapter())
}
