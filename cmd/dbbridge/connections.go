package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "Manage saved connections",
}

var connectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved connections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, _, err := loadRuntime()
		if err != nil {
			return err
		}
		saved, err := st.List()
		if err != nil {
			return err
		}
		return printJSON(saved)
	},
}

var savedName string

var connectionsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the connection given by the connection flags",
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
		spec.Name = savedName
		if err := spec.Validate(); err != nil {
			return err
		}

		// Probe before persisting so obvious mistakes surface now.
		ok, err := svc.TestConnection(cmd.Context(), spec)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: database at %s is not reachable, saving anyway\n", spec.Host)
		}

		entry, err := st.Save("", spec)
		if err != nil {
			return err
		}
		return printJSON(entry)
	},
}

var connectionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved connection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, _, err := loadRuntime()
		if err != nil {
			return err
		}
		return st.Delete(args[0])
	},
}

func init() {
	connectionsSaveCmd.Flags().StringVar(&savedName, "name", "", "display name for the saved connection")

	connectionsCmd.AddCommand(connectionsListCmd, connectionsSaveCmd, connectionsDeleteCmd)
	rootCmd.AddCommand(connectionsCmd)
}
