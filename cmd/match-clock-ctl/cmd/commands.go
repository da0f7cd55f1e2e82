package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/soccer-timer/internal/api/grpc/timer"
	"github.com/oshokin/soccer-timer/internal/domain/clock"
	"github.com/oshokin/soccer-timer/internal/service/common"
	"github.com/oshokin/soccer-timer/internal/service/ctl"
	"github.com/oshokin/soccer-timer/internal/service/watcher"
)

// clockFlags are the optional timer arguments of start and update.
type clockFlags struct {
	matchTime int
	period    int
	paused    bool
	alertLead int
}

// register adds the flags; withLead also exposes the alert lead time.
func (f *clockFlags) register(flags *pflag.FlagSet, withLead bool) {
	flags.IntVar(&f.matchTime, "match-time", clock.DefaultMatchTimeSeconds, "elapsed match time in seconds")
	flags.IntVar(&f.period, "period", clock.DefaultPeriod, "current period, starting at 1")
	flags.BoolVar(&f.paused, "paused", false, "whether the clock is paused")

	if withLead {
		flags.IntVar(&f.alertLead, "alert-lead", clock.DefaultAlertLeadSeconds, "seconds of warning before the period ends")
	}
}

// args sends only the flags given on the command line so the daemon applies its own defaults.
func (f *clockFlags) args(flags *pflag.FlagSet) map[string]any {
	args := make(map[string]any)

	if flags.Changed("match-time") {
		args[clock.ArgMatchTime] = f.matchTime
	}

	if flags.Changed("period") {
		args[clock.ArgPeriod] = f.period
	}

	if flags.Changed("paused") {
		args[clock.ArgIsPaused] = f.paused
	}

	if flags.Lookup("alert-lead") != nil && flags.Changed("alert-lead") {
		args[clock.ArgAlertTimeSeconds] = f.alertLead
	}

	return args
}

func newStartCommand() *cobra.Command {
	var flags clockFlags

	command := &cobra.Command{
		Use:   "start",
		Short: "Start the match clock and arm the period-end alert.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return call(timer.MethodName(clock.CommandStart), flags.args(cmd.Flags()))
		},
	}

	flags.register(command.Flags(), true)

	return command
}

func newUpdateCommand() *cobra.Command {
	var flags clockFlags

	command := &cobra.Command{
		Use:   "update",
		Short: "Refresh the displayed match time, period and pause flag.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return call(timer.MethodName(clock.CommandUpdate), flags.args(cmd.Flags()))
		},
	}

	flags.register(command.Flags(), false)

	return command
}

func newSimpleCommand(use, short, method string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return call(method, nil)
		},
	}
}

func newCallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "call METHOD [key=value...]",
		Short: "Invoke any bridge method with raw arguments.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			values, err := ctl.ParseArgs(args[1:])
			if err != nil {
				return err
			}

			return call(args[0], values)
		},
	}
}

func newNotificationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"ls"},
		Short:   "List the notifications the daemon displays.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(func(ctx context.Context, client *common.Client) error {
				return ctl.List(ctx, client, cmd.OutOrStdout(), options.Wait)
			})
		},
	}
}

func newTapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tap ID ACTION",
		Short: "Press an action button on a displayed notification.",
		Args:  cobra.ExactArgs(2), //nolint:mnd // ID and action.
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("notification id: %w", err)
			}

			return withClient(func(ctx context.Context, client *common.Client) error {
				return ctl.Tap(ctx, client, id, args[1], options.Wait)
			})
		},
	}
}

func newWatchCommand() *cobra.Command {
	var interval time.Duration

	command := &cobra.Command{
		Use:   "watch",
		Short: "Print the notification tray whenever it changes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(func(ctx context.Context, client *common.Client) error {
				return watcher.Run(ctx, client, cmd.OutOrStdout(), interval)
			})
		},
	}

	command.Flags().DurationVarP(&interval, "interval", "i", watcher.DefaultPollInterval, "poll interval")

	return command
}

// call sends one bridge method.
func call(method string, args map[string]any) error {
	return withClient(func(ctx context.Context, client *common.Client) error {
		return ctl.Call(ctx, client, method, args, options.Wait)
	})
}
