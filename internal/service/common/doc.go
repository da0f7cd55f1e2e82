// Package common holds helpers shared by the match clock clients.
//
// It provides a gRPC client for the TimerService bridge with call timeouts
// and health checks, and detects the current system actor (hostname and
// username) announced with every call.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
