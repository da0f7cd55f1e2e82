// Package coordinator runs the match clock.
//
// A Coordinator owns the clock state and the period-end alert sub-state on a
// single goroutine. Commands from the UI bridge, the alert scheduler's
// deferred callback and the vibration loop's ticks all arrive through one
// mailbox and are handled strictly in order, so guard checks never observe a
// half-applied command. Deferred work is cancelled by guards and generation
// tokens checked when it fires, never by removing it from a queue.
//
// A Host plays the part of the operating system: it brings a coordinator
// process to life on start, routes commands to it and destroys it on
// shutdown.
package coordinator
