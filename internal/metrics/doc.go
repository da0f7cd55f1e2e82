// Package metrics defines the Prometheus collectors exported by the match
// clock daemon and the session server.
//
// Every method is safe to call on a nil receiver so components can run
// without a registry in tests.
package metrics
