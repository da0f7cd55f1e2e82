// Package config defines the settings used by the match clock binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Values from the YAML file are overridden by MATCH_CLOCK_* environment
// variables, which in turn are overridden by command line flags.
package config
