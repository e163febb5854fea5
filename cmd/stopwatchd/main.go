package main

import "github.com/oshokin/stopwatch-board/cmd/stopwatchd/cmd"

func main() {
	cmd.Execute()
}
