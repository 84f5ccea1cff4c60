package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Show or change the backend origin",
}

var endpointShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the backend origin in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(client.BaseURL())
		return nil
	},
}

var endpointSetCmd = &cobra.Command{
	Use:     "set <url>",
	Short:   "Switch to another backend origin",
	Example: `  moasaja endpoint set http://localhost:3001`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.SetBaseURL(args[0], true); err != nil {
			return fmt.Errorf("failed to set endpoint: %w", err)
		}
		notifier.Success("Using " + client.BaseURL())
		return nil
	},
}

var endpointResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the stored origin and resolve it again",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.ResetBaseURL(); err != nil {
			return fmt.Errorf("failed to reset endpoint: %w", err)
		}
		notifier.Success("Using " + client.BaseURL())
		return nil
	},
}

func init() {
	endpointCmd.AddCommand(endpointShowCmd, endpointSetCmd, endpointResetCmd)
	rootCmd.AddCommand(endpointCmd)
}
