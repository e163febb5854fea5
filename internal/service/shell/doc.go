// Package shell is the interactive stopwatchctl mode: a readline prompt
// dispatching board commands to the server.
package shell
