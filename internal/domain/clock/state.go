package clock

import (
	"fmt"
	"time"
)

const (
	// PeriodDuration is the nominal length of a period. It only drives the alert delay.
	PeriodDuration = 45 * time.Minute

	// DefaultMatchTimeSeconds is the match time used when none is supplied.
	DefaultMatchTimeSeconds = 0
	// DefaultPeriod is the period used when none is supplied.
	DefaultPeriod = 1
	// DefaultAlertLeadSeconds is how long before period end the alert begins by default.
	DefaultAlertLeadSeconds = 5

	// PulseDuration is the length of a single vibration pulse.
	PulseDuration = 500 * time.Millisecond
	// PulseInterval is the delay between two vibration pulses.
	PulseInterval = time.Second
)

// State is the authoritative in-memory record of the match clock.
type State struct {
	// MatchTimeSeconds is the elapsed time in the current period.
	MatchTimeSeconds int
	// Period is the current period index, starting at 1.
	Period int
	// Paused reports whether the clock is paused.
	Paused bool
	// AlertLeadSeconds is how long before period end the alert should begin.
	AlertLeadSeconds int
	// Running reports whether the coordinator is in an active lifecycle.
	Running bool
}

// DefaultState returns the state a freshly created coordinator starts with.
func DefaultState() State {
	return State{
		MatchTimeSeconds: DefaultMatchTimeSeconds,
		Period:           DefaultPeriod,
		AlertLeadSeconds: DefaultAlertLeadSeconds,
	}
}

// Active reports whether period-end alerts may fire or continue.
func (s State) Active() bool {
	return s.Running && !s.Paused
}

// StatusLabel returns "Paused" or "Running".
func (s State) StatusLabel() string {
	if s.Paused {
		return "Paused"
	}

	return "Running"
}

// Summary renders the status line, e.g. "12:05 - Period 2 - Running".
func (s State) Summary() string {
	return fmt.Sprintf("%s - Period %d - %s", FormatMatchTime(s.MatchTimeSeconds), s.Period, s.StatusLabel())
}

// FormatMatchTime renders seconds as mm:ss. Minutes are not wrapped at 60.
func FormatMatchTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// AlertDelay returns how long after arming the period-end alert should begin.
// The result is never negative.
func AlertDelay(leadSeconds int) time.Duration {
	delay := PeriodDuration - time.Duration(leadSeconds)*time.Second
	if delay < 0 {
		return 0
	}

	return delay
}
