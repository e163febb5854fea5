// Package client implements the stopwatchctl commands: one-shot calls that
// print the affected stopwatches, and a watch mode that follows the board
// and reconnects when the server goes away.
package client
