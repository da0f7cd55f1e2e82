// Package sessionserver runs the session key/value endpoint.
package sessionserver
