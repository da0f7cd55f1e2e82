// Package daemon runs the match clock coordinator behind its UI bridge.
//
// Run wires the notification tray, lifecycle manager, vibrator and metrics
// into a coordinator host, serves the TimerService bridge with gRPC health,
// and optionally exposes Prometheus metrics over HTTP.
package daemon
