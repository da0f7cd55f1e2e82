package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/soccer-timer/internal/api/grpc/timer"
	"github.com/oshokin/soccer-timer/internal/config"
	"github.com/oshokin/soccer-timer/internal/domain/clock"
	"github.com/oshokin/soccer-timer/internal/service/common"
	"github.com/oshokin/soccer-timer/internal/service/ctl"
	"github.com/oshokin/soccer-timer/internal/version"
)

// defaultWait is how long an unavailable daemon is retried.
const defaultWait = 10 * time.Second

var (
	// options holds the connection flags shared by every subcommand.
	options = ctl.Options{Wait: defaultWait}

	// rootCmd groups the client subcommands.
	rootCmd = &cobra.Command{
		Use:   "match-clock-ctl",
		Short: "Control a running match-clock daemon.",
		Long: `Sends timer commands to a running match-clock daemon over its gRPC bridge
and inspects the notifications it displays.

Unavailable daemons are retried for --wait before giving up, so the client
can be started right after the daemon.`,
		SilenceUsage: true,
	}
)

// Execute runs the match-clock-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withClient connects to the daemon, runs fn and closes the connection.
func withClient(fn func(ctx context.Context, client *common.Client) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	client, err := ctl.Connect(ctx, &options)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	return fn(ctx, client)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&options.ServerAddress, "server", "s", "", "bridge address, overrides configuration")
	flags.DurationVarP(&options.Wait, "wait", "w", defaultWait, "how long to retry an unavailable daemon")

	rootCmd.AddCommand(
		newStartCommand(),
		newSimpleCommand("pause", "Pause the match clock.", timer.MethodName(clock.CommandPause)),
		newSimpleCommand("resume", "Resume the match clock (starts over from 00:00, period 1).", timer.MethodName(clock.CommandResume)),
		newSimpleCommand("stop", "Stop the match clock and clear its notifications.", timer.MethodName(clock.CommandStop)),
		newUpdateCommand(),
		newSimpleCommand("start-alert", "Re-arm the period-end alert.", timer.MethodName(clock.CommandStartAlert)),
		newSimpleCommand("stop-alert", "Stop the period-end alert and its vibration.", timer.MethodName(clock.CommandStopAlert)),
		newCallCommand(),
		newNotificationsCommand(),
		newTapCommand(),
		newWatchCommand(),
	)
}
