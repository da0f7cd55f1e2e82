package main

import "github.com/oshokin/soccer-timer/cmd/match-clock-ctl/cmd"

func main() {
	cmd.Execute()
}
