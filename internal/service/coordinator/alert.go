package coordinator

import (
	"context"

	"github.com/oshokin/soccer-timer/internal/domain/clock"
	"github.com/oshokin/soccer-timer/internal/logger"
)

// arm schedules the period-end alert a fixed delay from now. Arming again
// bumps the generation, so only the most recent callback can fire.
func (c *Coordinator) arm(ctx context.Context) {
	if !c.state.Active() {
		logger.DebugKV(ctx, "Alert not armed", "running", c.state.Running, "paused", c.state.Paused)

		return
	}

	c.generation++

	if c.alert != clock.AlertAlerting {
		c.alert = clock.AlertScheduled
	}

	delay := clock.AlertDelay(c.state.AlertLeadSeconds)
	c.after(delay, envelope{kind: kindAlertDue, token: c.generation})

	logger.InfoKV(ctx, "Period-end alert armed", "delay", delay.String(), "generation", c.generation)
}

// onAlertDue re-checks the guard at firing time.
func (c *Coordinator) onAlertDue(ctx context.Context, token uint64) {
	if token != c.generation {
		logger.DebugKV(ctx, "Stale alert callback ignored", "token", token, "generation", c.generation)

		return
	}

	if !c.state.Active() {
		if c.alert == clock.AlertScheduled {
			c.alert = clock.AlertInactive
		}

		logger.InfoKV(ctx, "Period-end alert suppressed", "running", c.state.Running, "paused", c.state.Paused)

		return
	}

	c.enterAlerting(ctx)
}

// enterAlerting shows the alert notification once and starts a new vibration loop.
func (c *Coordinator) enterAlerting(ctx context.Context) {
	c.alert = clock.AlertAlerting
	c.alertSession++
	c.deps.Metrics.AlertFired()

	logger.InfoKV(ctx, "Period ending soon", "period", c.state.Period, "lead_seconds", c.state.AlertLeadSeconds)

	if err := c.deps.Presenter.RenderAlert(ctx, c.state.Period, c.state.AlertLeadSeconds); err != nil {
		logger.ErrorKV(ctx, "Failed to render alert notification", "error", err)
	}

	c.onTick(ctx, c.alertSession)
}

// onTick pulses once and re-arms itself while the alert is live. When the
// guard fails the loop simply stops rescheduling.
func (c *Coordinator) onTick(ctx context.Context, token uint64) {
	if token != c.alertSession || c.alert != clock.AlertAlerting || !c.state.Active() {
		return
	}

	if err := c.deps.Vibrator.Vibrate(ctx, clock.PulseDuration); err != nil {
		logger.WarnKV(ctx, "Vibration pulse failed", "error", err)
	} else {
		c.deps.Metrics.Pulse()
	}

	c.after(clock.PulseInterval, envelope{kind: kindTick, token: token})
}
