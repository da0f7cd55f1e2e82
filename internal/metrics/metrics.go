package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "match_clock"

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Coordinator holds the collectors updated by the coordinator.
type Coordinator struct {
	commands   *prometheus.CounterVec
	alerts     prometheus.Counter
	pulses     prometheus.Counter
	alertState prometheus.Gauge
}

// NewCoordinator creates the coordinator collectors and registers them with reg.
func NewCoordinator(reg prometheus.Registerer) *Coordinator {
	m := &Coordinator{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands processed by the coordinator.",
		}, []string{"command", "outcome"}),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "period_end_alerts_total",
			Help:      "Period-end alerts that entered the alerting state.",
		}),
		pulses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vibration_pulses_total",
			Help:      "Vibration pulses issued by the alert loop.",
		}),
		alertState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alert_state",
			Help:      "Current alert state: 0 inactive, 1 scheduled, 2 alerting.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.commands, m.alerts, m.pulses, m.alertState)
	}

	return m
}

// CommandProcessed counts a processed command.
func (m *Coordinator) CommandProcessed(command string, err error) {
	if m == nil {
		return
	}

	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}

	m.commands.WithLabelValues(command, outcome).Inc()
}

// AlertFired counts an alert entering the alerting state.
func (m *Coordinator) AlertFired() {
	if m == nil {
		return
	}

	m.alerts.Inc()
}

// Pulse counts a vibration pulse.
func (m *Coordinator) Pulse() {
	if m == nil {
		return
	}

	m.pulses.Inc()
}

// SetAlertState records the numeric alert state.
func (m *Coordinator) SetAlertState(state int) {
	if m == nil {
		return
	}

	m.alertState.Set(float64(state))
}

// Session holds the collectors updated by the session endpoint.
type Session struct {
	requests *prometheus.CounterVec
	pruned   prometheus.Counter
}

// NewSession creates the session collectors and registers them with reg.
func NewSession(reg prometheus.Registerer) *Session {
	m := &Session{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "requests_total",
			Help:      "Session endpoint requests by action and outcome.",
		}, []string{"action", "outcome"}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "pruned_total",
			Help:      "Session entries removed for being stale.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.pruned)
	}

	return m
}

// Request counts a session request.
func (m *Session) Request(action, outcome string) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(action, outcome).Inc()
}

// Pruned counts removed session entries.
func (m *Session) Pruned(n int) {
	if m == nil || n <= 0 {
		return
	}

	m.pruned.Add(float64(n))
}
