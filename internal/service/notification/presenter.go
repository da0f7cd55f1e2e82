package notification

import (
	"context"
	"fmt"

	"github.com/oshokin/soccer-timer/internal/domain/clock"
	"github.com/oshokin/soccer-timer/internal/logger"
)

// Fixed slots and channels owned by the coordinator.
const (
	StatusID = 1
	AlertID  = 2

	StatusChannelID = "match-clock-status"
	AlertChannelID  = "match-clock-alert"
)

// StatusChannel is the low-importance category for the persistent clock display.
func StatusChannel() Channel {
	return Channel{
		ID:          StatusChannelID,
		Name:        "Match Clock Service",
		Description: "Keeps the match clock running in the background",
		Importance:  ImportanceLow,
	}
}

// AlertChannel is the high-importance category for period-end alerts.
func AlertChannel() Channel {
	return Channel{
		ID:          AlertChannelID,
		Name:        "Match Clock Alerts",
		Description: "Period end alerts",
		Importance:  ImportanceHigh,
		Vibration:   true,
	}
}

// StatusNotification builds the status slot content for state.
func StatusNotification(state clock.State) Notification {
	return Notification{
		ID:        StatusID,
		ChannelID: StatusChannelID,
		Title:     "Soccer Timer",
		Text:      state.Summary(),
		Priority:  PriorityLow,
		Ongoing:   true,
		Actions: []Action{
			{Label: "Pause", Command: string(clock.CommandPause)},
			{Label: "Stop", Command: string(clock.CommandStop)},
		},
	}
}

// AlertNotification builds the period-end alert slot content.
func AlertNotification(period, leadSeconds int) Notification {
	return Notification{
		ID:        AlertID,
		ChannelID: AlertChannelID,
		Title:     "Period Ending Soon!",
		Text:      fmt.Sprintf("Period %d will end in %d seconds", period, leadSeconds),
		Priority:  PriorityHigh,
		Ongoing:   true,
	}
}

// Presenter renders coordinator state into a Tray.
type Presenter struct {
	tray *Tray
}

// NewPresenter returns a presenter drawing into tray.
func NewPresenter(tray *Tray) *Presenter {
	return &Presenter{tray: tray}
}

// RenderStatus posts or replaces the status notification.
func (p *Presenter) RenderStatus(ctx context.Context, state clock.State) error {
	n := StatusNotification(state)
	if err := p.tray.Post(n); err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	logger.DebugKV(ctx, "Status notification rendered", "text", n.Text)

	return nil
}

// RenderAlert posts or replaces the period-end alert notification.
func (p *Presenter) RenderAlert(ctx context.Context, period, leadSeconds int) error {
	n := AlertNotification(period, leadSeconds)
	if err := p.tray.Post(n); err != nil {
		return fmt.Errorf("render alert: %w", err)
	}

	logger.InfoKV(ctx, "Alert notification rendered", "text", n.Text)

	return nil
}

// WithdrawAlert removes the alert notification.
func (p *Presenter) WithdrawAlert(ctx context.Context) error {
	p.tray.Cancel(AlertID)
	logger.Debug(ctx, "Alert notification withdrawn")

	return nil
}

// WithdrawAll removes every notification owned by the coordinator.
func (p *Presenter) WithdrawAll(ctx context.Context) error {
	p.tray.CancelAll()
	logger.Debug(ctx, "All notifications withdrawn")

	return nil
}
