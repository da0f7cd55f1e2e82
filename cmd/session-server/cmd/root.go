package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/soccer-timer/internal/config"
	"github.com/oshokin/soccer-timer/internal/service/sessionserver"
	"github.com/oshokin/soccer-timer/internal/version"
)

var (
	// options collects the session server flags.
	options sessionserver.Options

	// rootCmd serves the session endpoint.
	rootCmd = &cobra.Command{
		Use:   "session-server [listen-address]",
		Short: "Serve the match session key/value endpoint.",
		Long: `Serves the JSON session endpoint used to share a match between devices.

Clients POST {"action": "check"|"load"|"save", "password": ..., "data": ...}
to the root path. Sessions are stored under the hashed password and removed
once they have not been written for session_max_age (60 days by default).
Prometheus metrics are served on /metrics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if len(args) > 0 {
				options.ListenAddress = args[0]
			}

			return sessionserver.Run(ctx, &options)
		},
	}
)

// Execute runs the session-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&options.SessionDir, "session-dir", "d", "", "directory holding session files")
}
