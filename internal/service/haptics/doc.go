// Package haptics drives the vibration pulses of the period-end alert.
//
// A Vibrator issues one pulse per call and returns without waiting for the
// pulse to finish.
package haptics
