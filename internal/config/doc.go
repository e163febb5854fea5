// Package config defines the settings shared by stopwatchd and stopwatchctl
// and provides helpers to load, validate and save them in YAML format.
//
// Values from the YAML file can be overridden with STOPWATCH_* environment
// variables; a missing file leaves the defaults in place.
package config
