// Package version holds build metadata injected through ldflags and the
// `version` subcommand shared by stopwatchd and stopwatchctl.
package version
