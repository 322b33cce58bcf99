package mongodb

import (
	"github.com/opendevtool/dbbridge/pkg/adapter"
)

func init() {
	// Register MongoDB adapter with the global registry
	adapter.Register(NewAdapter())
}
