// Package clock contains the core domain types of the match clock.
//
// It defines State (match time, period, pause flag and alert configuration),
// AlertState (the period-end alert sub-state), the optional command arguments
// with their documented fallbacks, and the fixed period duration used to
// compute when the period-end alert begins.
package clock
