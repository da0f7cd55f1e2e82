package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/soccer-timer/internal/config"
	"github.com/oshokin/soccer-timer/internal/logger"
	"github.com/oshokin/soccer-timer/internal/service/daemon"
	"github.com/oshokin/soccer-timer/internal/version"
)

var (
	// options collects the daemon flags.
	options daemon.Options

	// rootCmd runs the coordinator daemon.
	rootCmd = &cobra.Command{
		Use:   "match-clock [listen-address]",
		Short: "Run the match clock coordinator behind its gRPC bridge.",
		Long: `Starts the background coordinator of the soccer match clock.

The daemon keeps the status notification current, schedules the period-end
alert and pulses the vibrator until the alert is stopped. UI clients drive it
through the soccertime.v1.TimerService gRPC bridge; match-clock-ctl is one
such client. The listen address argument overrides bridge_addr from the
configuration file and the MATCH_CLOCK_BRIDGE_ADDR environment variable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if len(args) > 0 {
				options.ListenAddress = args[0]
			}

			logger.Info(ctx, version.For(cmd.Root().Name()))

			return daemon.Run(ctx, &options)
		},
	}
)

// Execute runs the match-clock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&options.MetricsAddress, "metrics-addr", "m", "", "serve Prometheus metrics on this address")
	flags.StringVar(&options.Vibrator, "vibrator", "", "vibrator kind: auto, command, bell or log")
	flags.StringVar(&options.LockFile, "lock-file", "", "foreground lock file")
}
