package main

import "github.com/oshokin/soccer-timer/cmd/session-server/cmd"

func main() {
	cmd.Execute()
}
