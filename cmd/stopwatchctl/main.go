package main

import "github.com/oshokin/stopwatch-board/cmd/stopwatchctl/cmd"

func main() {
	cmd.Execute()
}
