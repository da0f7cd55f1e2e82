package watcher

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/oshokin/soccer-timer/internal/logger"
	"github.com/oshokin/soccer-timer/internal/service/ctl"
	"github.com/oshokin/soccer-timer/internal/service/notification"
)

// DefaultPollInterval is how often the tray is fetched.
const DefaultPollInterval = time.Second

// Source lists the notifications currently displayed.
type Source interface {
	Notifications(ctx context.Context) ([]notification.Notification, error)
}

// Run polls source every interval and writes the tray to out whenever it
// changes. It returns nil once ctx is canceled.
func Run(ctx context.Context, source Source, out io.Writer, interval time.Duration) error {
	ctx = logger.WithName(ctx, "watcher")

	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var (
		last    []notification.Notification
		printed bool
	)

	check := func() error {
		list, err := source.Notifications(ctx)
		if err != nil {
			return err
		}

		if printed && reflect.DeepEqual(list, last) {
			return nil
		}

		last, printed = list, true

		return render(out, list)
	}

	if err := check(); err != nil {
		logger.ErrorKV(ctx, "Fetch notifications failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug(ctx, "Context canceled, exiting")

			return nil
		case <-ticker.C:
			if err := check(); err != nil {
				logger.ErrorKV(ctx, "Fetch notifications failed", "error", err)
			}
		}
	}
}

func render(out io.Writer, list []notification.Notification) error {
	stamp := time.Now().Format(time.TimeOnly)

	if len(list) == 0 {
		_, err := fmt.Fprintf(out, "[%s] no notifications\n", stamp)

		return err
	}

	_, err := fmt.Fprintf(out, "[%s]\n%s\n", stamp, ctl.Table(list))

	return err
}
