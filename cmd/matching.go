package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moasaja/moasaja/api"
)

var matchingStatus string

var matchingCmd = &cobra.Command{
	Use:   "matching",
	Short: "Follow the posts you take part in",
}

var matchingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your matching entries",
	Long:  `List your matching entries, optionally only those with a given status (waiting, success, closed).`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status := api.MatchingStatus(matchingStatus)
		if !status.Valid() {
			return fmt.Errorf("invalid status %q (must be waiting, success or closed)", matchingStatus)
		}
		entries, err := client.MyMatching(cmd.Context(), status)
		if err != nil {
			return err
		}
		return render(entries, func() string { return formatter.FormatMatching(entries) })
	},
}

var matchingSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Count your matching entries by status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := client.MatchingSummary(cmd.Context())
		if err != nil {
			return err
		}
		return render(summary, func() string { return formatter.FormatMatchingSummary(summary) })
	},
}

var matchingHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show matching, completed and cancelled participations, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := client.History(cmd.Context())
		if err != nil {
			return err
		}
		if len(history.Unavailable) > 0 {
			logger.Warn().Interface("unavailable", history.Unavailable).Msg("Some history sources failed")
		}
		return render(history, func() string { return formatter.FormatHistory(history) })
	},
}

func init() {
	matchingListCmd.Flags().StringVarP(&matchingStatus, "status", "s", "", "only entries with this status")

	matchingCmd.AddCommand(matchingListCmd, matchingSummaryCmd, matchingHistoryCmd)
	rootCmd.AddCommand(matchingCmd)
}
