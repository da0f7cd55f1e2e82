// Package lifecycle implements the process lifecycle of the coordinator:
// registering its notification channels, promoting it to the protected
// foreground instance of the host and demoting it again on stop.
package lifecycle
