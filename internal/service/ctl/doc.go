// Package ctl implements the match-clock-ctl operations.
//
// Commands are sent to the daemon bridge and retried with exponential
// backoff while the daemon is unavailable, which covers the window right
// after it has been launched.
package ctl
