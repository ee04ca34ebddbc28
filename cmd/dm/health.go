package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check the health of the API server",
	GroupID: "system",
	// Health needs no game identity.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupColor()
		gameClient = newClient()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := gameClient.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}

		if jsonOutput {
			if err := printJSON(cmd.OutOrStdout(), map[string]string{"status": status}); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Health: %s\n", status)
		}

		if status != "ok" {
			return fmt.Errorf("unhealthy: %s", status)
		}
		return nil
	},
}
