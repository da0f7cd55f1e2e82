package haptics

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestNew_SelectsKind verifies each kind yields the expected implementation.
func TestNew_SelectsKind(t *testing.T) {
	t.Parallel()

	v, err := New(KindBell, "", nil)
	require.NoError(t, err)
	require.IsType(t, new(Bell), v)

	v, err = New(KindLog, "", nil)
	require.NoError(t, err)
	require.IsType(t, Log{}, v)

	v, err = New(KindCommand, "", nil)
	require.NoError(t, err)
	require.IsType(t, new(Command), v)

	_, err = New("buzzer", "", nil)
	require.ErrorIs(t, err, ErrUnknownKind)
}

// TestCommand_Argv substitutes the pulse duration.
func TestCommand_Argv(t *testing.T) {
	t.Parallel()

	c, err := NewCommand(DefaultCommand)
	require.NoError(t, err)
	require.Equal(t, []string{"termux-vibrate", "-d", "500"}, c.Argv(500*time.Millisecond))

	_, err = NewCommand("   ")
	require.Error(t, err)
}

// TestBell_Vibrate writes one BEL per pulse.
func TestBell_Vibrate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	b := &Bell{out: &buf}
	require.NoError(t, b.Vibrate(context.Background(), time.Second))
	require.NoError(t, b.Vibrate(context.Background(), time.Second))
	require.Equal(t, "\a\a", buf.String())

	require.NoError(t, new(Bell).Vibrate(context.Background(), time.Second))
}

// TestCommand_VibrateMissingBinary surfaces start failures.
func TestCommand_VibrateMissingBinary(t *testing.T) {
	t.Parallel()

	c, err := NewCommand("definitely-not-a-vibrator-binary -d {ms}")
	require.NoError(t, err)
	require.Error(t, c.Vibrate(context.Background(), time.Second))
}
