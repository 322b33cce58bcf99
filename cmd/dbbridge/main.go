package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	// Import all database adapters to trigger their init() registration
	_ "github.com/opendevtool/dbbridge/internal/database/mongodb"
	_ "github.com/opendevtool/dbbridge/internal/database/mysql"
	_ "github.com/opendevtool/dbbridge/internal/database/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
