package clock

// AlertState is the period-end alert sub-state.
type AlertState int

const (
	// AlertInactive means no alert is pending or running.
	AlertInactive AlertState = iota
	// AlertScheduled means a deferred alert callback is pending.
	AlertScheduled
	// AlertAlerting means the vibration loop and the alert notification are live.
	AlertAlerting
)

// String implements fmt.Stringer.
func (a AlertState) String() string {
	switch a {
	case AlertInactive:
		return "inactive"
	case AlertScheduled:
		return "scheduled"
	case AlertAlerting:
		return "alerting"
	default:
		return "unknown"
	}
}
