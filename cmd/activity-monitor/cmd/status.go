package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/activity-monitor/internal/service/monitor"
)

// statusCmd prints the persisted state.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last observed state.",
	Long:  "Print the persisted state record (last app, window, network, accessories, meeting, alert times) and the number of queued events.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return monitor.Status(cmd.Context(), options(), cmd.OutOrStdout())
	},
}
