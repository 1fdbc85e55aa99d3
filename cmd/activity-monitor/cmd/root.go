package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/activity-monitor/internal/config"
	"github.com/oshokin/activity-monitor/internal/service/monitor"
	"github.com/oshokin/activity-monitor/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// envPath stores the path to the dotenv file with credentials.
	envPath string
	// logLevel overrides the log level from the settings.
	logLevel string
	// dryRun logs notifications instead of sending them.
	dryRun bool

	// rootCmd represents the base command running the monitor.
	rootCmd = &cobra.Command{
		Use:   "activity-monitor",
		Short: "Report host activity to a messaging endpoint.",
		Long: `Background service that samples what this host is doing and reports it.

Every tick the monitor reads the foreground application and window title; focus mode,
Wi-Fi network and Bluetooth accessories are read every 30 seconds, conferencing apps
every 20 seconds and the battery every 5 minutes. Changes are queued and delivered
as one digest every batch interval (30 minutes by default).

Low battery and long uninterrupted work trigger immediate alerts, at most once per hour each.
Runs until interrupted. State and queue survive restarts.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return monitor.Run(ctx, options())
		},
	}
)

// Execute runs the activity-monitor CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// options collects the persistent flags.
func options() *monitor.Options {
	return &monitor.Options{
		ConfigPath: configPath,
		EnvPath:    envPath,
		LogLevel:   logLevel,
		DryRun:     dryRun,
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&envPath, "env", "e", "", "path to dotenv file (default: .env next to the configuration file)")
	flags.StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn, error")
	flags.BoolVar(&dryRun, "dry-run", false, "log notifications instead of sending them")

	rootCmd.AddCommand(flushCmd, statusCmd, initCmd)
}
