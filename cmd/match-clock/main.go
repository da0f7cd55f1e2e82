package main

import "github.com/oshokin/soccer-timer/cmd/match-clock/cmd"

func main() {
	cmd.Execute()
}
