package haptics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/soccer-timer/internal/logger"
)

// Vibrator kinds accepted by New.
const (
	KindAuto    = "auto"
	KindCommand = "command"
	KindBell    = "bell"
	KindLog     = "log"
)

// DefaultCommand is the vibration command used on Android (Termux:API).
// "{ms}" is replaced with the pulse duration in milliseconds.
const DefaultCommand = "termux-vibrate -d {ms}"

var (
	// ErrUnknownKind is returned for an unsupported vibrator kind.
	ErrUnknownKind = errors.New("unknown vibrator kind")
	// errEmptyCommand is returned when the command vibrator has nothing to run.
	errEmptyCommand = errors.New("vibrate command is empty")
)

// Vibrator issues a single vibration pulse.
type Vibrator interface {
	Vibrate(ctx context.Context, d time.Duration) error
}

// New builds the vibrator selected by kind. With KindAuto the command
// vibrator is used on Android and the terminal bell elsewhere.
//
//nolint:ireturn // Callers only need the Vibrator behaviour.
func New(kind, command string, out io.Writer) (Vibrator, error) {
	if kind == "" || kind == KindAuto {
		kind = KindBell
		if strings.Contains(strings.ToLower(runtime.GOOS), "android") {
			kind = KindCommand
		}
	}

	switch kind {
	case KindCommand:
		if command == "" {
			command = DefaultCommand
		}

		return NewCommand(command)
	case KindBell:
		return &Bell{out: out}, nil
	case KindLog:
		return Log{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
}

// Command runs an external program per pulse.
type Command struct {
	// args is the command line split on whitespace, possibly containing "{ms}".
	args []string
}

// NewCommand parses a command template such as "termux-vibrate -d {ms}".
func NewCommand(template string) (*Command, error) {
	args := strings.Fields(template)
	if len(args) == 0 {
		return nil, errEmptyCommand
	}

	return &Command{args: args}, nil
}

// Argv returns the command line for a pulse of duration d.
func (c *Command) Argv(d time.Duration) []string {
	ms := strconv.FormatInt(d.Milliseconds(), 10)

	argv := make([]string, len(c.args))
	for i, arg := range c.args {
		argv[i] = strings.ReplaceAll(arg, "{ms}", ms)
	}

	return argv
}

// Vibrate starts the command and reaps it in the background.
func (c *Command) Vibrate(ctx context.Context, d time.Duration) error {
	argv := c.Argv(d)

	//nolint:gosec // The command comes from the operator's configuration.
	cmd := exec.CommandContext(context.WithoutCancel(ctx), argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start vibrate command: %w", err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			logger.WarnKV(ctx, "Vibrate command failed", "command", argv[0], "error", err)
		}
	}()

	return nil
}

// Bell rings the terminal bell once per pulse.
type Bell struct {
	out io.Writer
}

// Vibrate writes a BEL character.
func (b *Bell) Vibrate(_ context.Context, _ time.Duration) error {
	if b.out == nil {
		return nil
	}

	if _, err := io.WriteString(b.out, "\a"); err != nil {
		return fmt.Errorf("ring bell: %w", err)
	}

	return nil
}

// Log only records the pulse.
type Log struct{}

// Vibrate logs the pulse at debug level.
func (Log) Vibrate(ctx context.Context, d time.Duration) error {
	logger.DebugKV(ctx, "Vibration pulse", "duration", d.String())

	return nil
}
