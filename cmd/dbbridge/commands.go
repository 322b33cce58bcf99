package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opendevtool/dbbridge/internal/service"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test whether the database is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, _, err := loadRuntime()
		if err != nil {
			return err
		}
		spec, err := connectionSpec(st)
		if err != nil {
			return err
		}

		ok, err := svc.TestConnection(cmd.Context(), spec)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("database at %s is not reachable", spec.Host)
		}
		fmt.Println("connection ok")
		return nil
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "List tables and collections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConnection(cmd, func(svc *service.Service, id string) error {
			schema, err := svc.GetSchema(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(schema)
		})
	},
}

var structureCmd = &cobra.Command{
	Use:   "structure <table>",
	Short: "Describe the columns or fields of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConnection(cmd, func(svc *service.Service, id string) error {
			structure, err := svc.GetTableStructure(cmd.Context(), id, args[0])
			if err != nil {
				return err
			}
			return printJSON(structure)
		})
	},
}

var (
	dataOffset int64
	dataLimit  int64
)

var dataCmd = &cobra.Command{
	Use:   "data <table>",
	Short: "Fetch a page of rows from a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConnection(cmd, func(svc *service.Service, id string) error {
			result, err := svc.GetTableData(cmd.Context(), id, args[0], dataOffset, dataLimit)
			if err != nil {
				return err
			}
			return printJSON(result)
		})
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <query>",
	Short: "Run an ad-hoc query",
	Long:  "Run a backend-native query: SQL text for PostgreSQL and MySQL, or an extended-JSON find document for MongoDB, e.g. '{\"collection\": \"users\", \"filter\": {}}'.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withConnection(cmd, func(svc *service.Service, id string) error {
			result, err := svc.ExecuteQuery(cmd.Context(), id, args[0])
			if err != nil {
				return err
			}
			return printJSON(result)
		})
	},
}

func init() {
	dataCmd.Flags().Int64Var(&dataOffset, "offset", 0, "row offset to start from")
	dataCmd.Flags().Int64Var(&dataLimit, "limit", 0, "maximum rows to fetch (0 uses the configured default)")

	rootCmd.AddCommand(testCmd, schemaCmd, structureCmd, dataCmd, queryCmd)
}
