package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/activity-monitor/internal/config"
)

var (
	// force allows init to replace an existing settings file.
	force bool

	// errSettingsExist is returned when init would overwrite settings.
	errSettingsExist = errors.New("settings file already exists, use --force to replace it")

	// initCmd writes a settings file with every default.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file.",
		Long:  "Create a configuration file with every setting at its default value. Notifications are only logged until a sink is configured.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s: %w", configPath, errSettingsExist)
			}

			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", configPath)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")
}
