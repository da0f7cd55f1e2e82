// Package integration runs the match clock binaries' services end to end
// over real loopback sockets.
package integration
