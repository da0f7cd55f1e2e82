// Package watcher polls the daemon's notification tray and prints it
// whenever it changes, mirroring what a user would see on the device.
package watcher
