// Package version exposes build metadata for the match clock binaries.
//
// Version, Commit and BuildTime are injected at build time via ldflags and
// default to placeholder values for local builds.
package version
