package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opendevtool/dbbridge/internal/cliconfig"
	"github.com/opendevtool/dbbridge/internal/database"
	"github.com/opendevtool/dbbridge/internal/service"
	"github.com/opendevtool/dbbridge/internal/store"
	"github.com/opendevtool/dbbridge/pkg/adapter"
	"github.com/opendevtool/dbbridge/pkg/config"
	"github.com/opendevtool/dbbridge/pkg/logger"
)

const version = "1.0.0"

var (
	cfgFile string
	verbose bool

	// Connection flags, used when no saved connection id is given.
	flagType     string
	flagHost     string
	flagPort     int
	flagUser     string
	flagPassword string
	flagDatabase string
	flagSaved    string
)

var rootCmd = &cobra.Command{
	Use:           "dbbridge",
	Short:         "Inspect and query databases from the command line",
	Long:          "dbbridge connects to PostgreSQL, MySQL, and MongoDB databases to browse schemas, page through table data, and run ad-hoc queries.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default "+cliconfig.DefaultFileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.PersistentFlags().StringVar(&flagType, "type", "", "database type (postgres, mysql, mongodb)")
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "localhost", "database host")
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", 0, "database port (0 uses the type's default)")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "database user")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "database password")
	rootCmd.PersistentFlags().StringVar(&flagDatabase, "database", "", "database name")
	rootCmd.PersistentFlags().StringVar(&flagSaved, "saved", "", "id of a saved connection to use")
}

// newLogger builds the CLI logger, quiet unless --verbose is set.
func newLogger() *logger.Logger {
	log := logger.New("dbbridge", version)
	if !verbose {
		log.DisableConsoleOutput()
	}
	return log
}

// loadRuntime assembles the service and store from config and flags.
func loadRuntime() (*service.Service, *store.Store, *config.Config, error) {
	cfg, err := cliconfig.Load(cfgFile)
	if err != nil {
		return nil, nil, nil, err
	}
	svc := service.New(database.NewManager(nil), cfg, newLogger())
	st := store.New(cfg.Get(config.KeyStorePath))
	return svc, st, cfg, nil
}

// connectionSpec resolves the target connection from --saved or from the
// individual connection flags.
func connectionSpec(st *store.Store) (adapter.ConnectionConfig, error) {
	if flagSaved != "" {
		saved, err := st.Get(flagSaved)
		if err != nil {
			return adapter.ConnectionConfig{}, err
		}
		return saved.Config, nil
	}
	return adapter.ConnectionConfig{
		ConnectionType: flagType,
		Host:           flagHost,
		Port:           flagPort,
		Username:       flagUser,
		Password:       flagPassword,
		DatabaseName:   flagDatabase,
	}, nil
}

// printJSON renders a command result to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withConnection opens the target connection, runs fn against it, and
// tears the connection down afterwards.
func withConnection(cmd *cobra.Command, fn func(svc *service.Service, id string) error) error {
	svc, st, _, err := loadRuntime()
	if err != nil {
		return err
	}
	spec, err := connectionSpec(st)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	id, err := svc.OpenConnection(ctx, spec)
	if err != nil {
		return fmt.Errorf("opening connection: %w", err)
	}
	defer svc.CloseConnection(ctx, id)

	return fn(svc, id)
}
