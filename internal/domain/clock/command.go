package clock

import (
	"errors"
	"fmt"
)

// Command names a coordinator operation. Values match the UI bridge method names.
type Command string

// Commands accepted by the coordinator.
const (
	CommandStart      Command = "startTimer"
	CommandPause      Command = "pauseTimer"
	CommandResume     Command = "resumeTimer"
	CommandStop       Command = "stopTimer"
	CommandUpdate     Command = "updateTimer"
	CommandStartAlert Command = "startPeriodEndAlert"
	CommandStopAlert  Command = "stopPeriodEndAlert"
)

// ErrUnknownCommand is returned for command names the coordinator does not implement.
var ErrUnknownCommand = errors.New("command not implemented")

// Commands lists every supported command in a stable order.
func Commands() []Command {
	return []Command{
		CommandStart,
		CommandPause,
		CommandResume,
		CommandStop,
		CommandUpdate,
		CommandStartAlert,
		CommandStopAlert,
	}
}

// ParseCommand resolves a bridge method name.
func ParseCommand(name string) (Command, error) {
	for _, c := range Commands() {
		if string(c) == name {
			return c, nil
		}
	}

	return "", fmt.Errorf("%q: %w", name, ErrUnknownCommand)
}

// Spawns reports whether the command brings a coordinator process to life
// when none is running.
func (c Command) Spawns() bool {
	return c == CommandStart || c == CommandResume
}
