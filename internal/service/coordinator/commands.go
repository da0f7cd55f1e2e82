package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/soccer-timer/internal/domain/clock"
	"github.com/oshokin/soccer-timer/internal/logger"
)

// apply runs a single command on the loop goroutine.
func (c *Coordinator) apply(ctx context.Context, command clock.Command, args map[string]any) error {
	switch command {
	case clock.CommandStart:
		return c.start(ctx, clock.ParseStartArgs(args))
	case clock.CommandResume:
		// Resume re-enters the start path without arguments, so every field
		// falls back to its default and the clock restarts at 00:00 of period 1.
		return c.start(ctx, clock.StartArgs{})
	case clock.CommandPause:
		return c.pause(ctx)
	case clock.CommandStop:
		return c.stop(ctx)
	case clock.CommandUpdate:
		return c.update(ctx, clock.ParseUpdateArgs(args))
	case clock.CommandStartAlert:
		c.arm(ctx)

		return nil
	case clock.CommandStopAlert:
		return c.stopAlert(ctx)
	default:
		return fmt.Errorf("%q: %w", command, clock.ErrUnknownCommand)
	}
}

// start promotes the process and resets the clock. A failed promotion leaves
// the previous state untouched.
func (c *Coordinator) start(ctx context.Context, args clock.StartArgs) error {
	next := args.Apply()

	if err := c.deps.Lifecycle.Promote(ctx, next); err != nil {
		return fmt.Errorf("promote to foreground: %w", err)
	}

	c.state = next
	c.suspendAlerting()

	logger.InfoKV(ctx, "Clock started",
		"match_time", clock.FormatMatchTime(next.MatchTimeSeconds),
		"period", next.Period,
		"paused", next.Paused,
		"alert_lead_seconds", next.AlertLeadSeconds,
	)

	err := c.renderStatus(ctx)

	c.arm(ctx)

	return err
}

// pause only flips the flag. Armed callbacks and the vibration loop notice it
// at their own checkpoints.
func (c *Coordinator) pause(ctx context.Context) error {
	c.state.Paused = true
	c.suspendAlerting()

	logger.InfoKV(ctx, "Clock paused", "match_time", clock.FormatMatchTime(c.state.MatchTimeSeconds))

	return c.renderStatus(ctx)
}

// update overwrites the clock fields of a running coordinator and never re-arms.
func (c *Coordinator) update(ctx context.Context, args clock.UpdateArgs) error {
	if c.state.Running {
		c.state = args.Apply(c.state)
		c.suspendAlerting()
	}

	return c.renderStatus(ctx)
}

// stop tears the process down. The loop exits after the acknowledgement.
func (c *Coordinator) stop(ctx context.Context) error {
	logger.Info(ctx, "Clock stopped")

	return c.teardown(ctx)
}

// stopAlert clears the alert sub-state, including a pending scheduled alert.
func (c *Coordinator) stopAlert(ctx context.Context) error {
	c.generation++
	c.alertSession++
	c.alert = clock.AlertInactive

	if err := c.deps.Presenter.WithdrawAlert(ctx); err != nil {
		return fmt.Errorf("withdraw alert: %w", err)
	}

	return nil
}

// renderStatus draws the status notification. Nothing is displayed while
// the coordinator is not running.
func (c *Coordinator) renderStatus(ctx context.Context) error {
	if !c.state.Running {
		return nil
	}

	return c.deps.Presenter.RenderStatus(ctx, c.state)
}

// suspendAlerting leaves the alerting sub-state as soon as the clock stops
// being active. The loop halts at its next tick and the alert notification
// stays until stopAlert withdraws it.
func (c *Coordinator) suspendAlerting() {
	if c.alert == clock.AlertAlerting && !c.state.Active() {
		c.alert = clock.AlertInactive
	}
}

// teardown forces every resource to its terminal value and marks the process terminated.
func (c *Coordinator) teardown(ctx context.Context) error {
	c.generation++
	c.alertSession++
	c.state.Running = false
	c.state.Paused = false
	c.alert = clock.AlertInactive
	c.terminated = true

	return errors.Join(
		c.deps.Presenter.WithdrawAll(ctx),
		c.deps.Lifecycle.Demote(ctx),
	)
}

// destroy is the safety net for host-initiated teardown.
func (c *Coordinator) destroy(ctx context.Context) {
	if err := c.teardown(ctx); err != nil {
		logger.ErrorKV(ctx, "Teardown on destroy failed", "error", err)
	}

	c.deps.Metrics.SetAlertState(int(c.alert))
	logger.Info(ctx, "Coordinator process destroyed")
}
