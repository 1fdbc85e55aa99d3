package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/activity-monitor/internal/service/monitor"
)

// flushCmd sends the queued events once.
var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Send queued events now.",
	Long:  "Deliver every queued event as one digest without waiting for the batch interval. An empty queue sends nothing.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sent, err := monitor.Flush(cmd.Context(), options())
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sent %d events\n", sent)

		return nil
	},
}
