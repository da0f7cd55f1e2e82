// Package notification implements the notification tray the coordinator
// renders into.
//
// A Tray holds registered channels and a fixed set of numbered slots; posting
// to an occupied slot replaces its content, so rendering is idempotent. The
// Presenter turns clock state into the low-priority status notification and
// the high-priority period-end alert.
package notification
