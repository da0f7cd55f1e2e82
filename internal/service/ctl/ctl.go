package ctl

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/soccer-timer/internal/config"
	"github.com/oshokin/soccer-timer/internal/logger"
	"github.com/oshokin/soccer-timer/internal/service/common"
	"github.com/oshokin/soccer-timer/internal/service/notification"
)

// Options configures how the daemon is reached.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides the bridge address from config when specified.
	ServerAddress string
	// Wait bounds how long unavailable daemons are retried; zero tries once.
	Wait time.Duration
}

// Client is the subset of the bridge client used here.
type Client interface {
	Call(ctx context.Context, method string, args map[string]any) error
	Notifications(ctx context.Context) ([]notification.Notification, error)
	Activate(ctx context.Context, id int, label string) error
}

// Connect loads settings and dials the bridge, announcing the local actor.
func Connect(ctx context.Context, opts *Options) (*common.Client, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	cfg.ApplyLogLevel()

	address := cfg.BridgeAddress
	if opts.ServerAddress != "" {
		address = opts.ServerAddress
	}

	dialOpts := []common.Option{common.WithCallTimeout(cfg.Timeout)}

	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Unable to detect actor", "error", err)
	} else {
		dialOpts = append(dialOpts, common.WithActor(actor))
	}

	logger.DebugKV(ctx, "Connecting to bridge", "address", address)

	return common.Dial(ctx, address, dialOpts...)
}

// Call invokes method with args, retrying while the daemon is unavailable.
func Call(ctx context.Context, client Client, method string, args map[string]any, wait time.Duration) error {
	_, err := retry(ctx, wait, func() (struct{}, error) {
		return struct{}{}, client.Call(ctx, method, args)
	})
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Command accepted", "method", method)

	return nil
}

// Tap presses an action on a displayed notification.
func Tap(ctx context.Context, client Client, id int, label string, wait time.Duration) error {
	_, err := retry(ctx, wait, func() (struct{}, error) {
		return struct{}{}, client.Activate(ctx, id, label)
	})

	return err
}

// List prints the displayed notifications as a table.
func List(ctx context.Context, client Client, out io.Writer, wait time.Duration) error {
	list, err := retry(ctx, wait, func() ([]notification.Notification, error) {
		return client.Notifications(ctx)
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, Table(list))

	return err
}

// Table renders notifications one per row.
func Table(list []notification.Notification) *uitable.Table {
	bold := color.New(color.Bold)
	alert := color.New(color.FgRed, color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Title"), bold.Sprint("Text"), bold.Sprint("Actions"))

	for _, n := range list {
		title := n.Title
		if n.Priority == notification.PriorityHigh {
			title = alert.Sprint(title)
		}

		labels := make([]string, 0, len(n.Actions))
		for _, a := range n.Actions {
			labels = append(labels, a.Label)
		}

		tbl.AddRow(n.ID, title, n.Text, strings.Join(labels, ", "))
	}

	tbl.RightAlign(0)

	return tbl
}

// retry runs op until it succeeds, fails with anything but Unavailable, or
// wait elapses.
func retry[T any](ctx context.Context, wait time.Duration, op func() (T, error)) (T, error) {
	operation := func() (T, error) {
		result, err := op()
		if err != nil && status.Code(err) != codes.Unavailable {
			return result, backoff.Permanent(err)
		}

		if err != nil {
			logger.DebugKV(ctx, "Bridge unavailable, retrying", "error", err)
		}

		return result, err
	}

	if wait <= 0 {
		return backoff.Retry(ctx, operation, backoff.WithMaxTries(1))
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(wait),
	)
}
