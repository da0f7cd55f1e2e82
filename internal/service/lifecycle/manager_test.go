package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/soccer-timer/internal/domain/clock"
	"github.com/oshokin/soccer-timer/internal/service/notification"
)

// TestManager_RegisterChannelsIdempotent registers both channels once.
func TestManager_RegisterChannelsIdempotent(t *testing.T) {
	t.Parallel()

	tray := notification.NewTray()
	m := NewManager(tray, "")

	require.NoError(t, m.RegisterChannels(context.Background()))
	require.NoError(t, m.RegisterChannels(context.Background()))

	status, ok := tray.Channel(notification.StatusChannelID)
	require.True(t, ok)
	require.Equal(t, notification.ImportanceLow, status.Importance)

	alert, ok := tray.Channel(notification.AlertChannelID)
	require.True(t, ok)
	require.Equal(t, notification.ImportanceHigh, alert.Importance)
	require.True(t, alert.Vibration)
}

// TestManager_PromoteDemote attaches and removes the foreground notification.
func TestManager_PromoteDemote(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tray := notification.NewTray()
	lockPath := filepath.Join(t.TempDir(), "match-clock.lock")
	m := NewManager(tray, lockPath)

	require.NoError(t, m.RegisterChannels(ctx))
	require.NoError(t, m.Promote(ctx, clock.DefaultState()))
	require.NoError(t, m.Promote(ctx, clock.DefaultState()))
	require.True(t, m.Promoted())
	require.Equal(t, 1, tray.Len())

	pid, err := os.ReadFile(lockPath + ".pid")
	require.NoError(t, err)
	require.NotEmpty(t, pid)

	require.NoError(t, m.Demote(ctx))
	require.NoError(t, m.Demote(ctx))
	require.False(t, m.Promoted())
	require.Zero(t, tray.Len())
}

// TestManager_PromoteHeldElsewhere fails while another manager holds the lock.
func TestManager_PromoteHeldElsewhere(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	lockPath := filepath.Join(t.TempDir(), "match-clock.lock")

	first := NewManager(notification.NewTray(), lockPath)
	require.NoError(t, first.RegisterChannels(ctx))
	require.NoError(t, first.Promote(ctx, clock.DefaultState()))

	tray := notification.NewTray()
	second := NewManager(tray, lockPath)
	require.NoError(t, second.RegisterChannels(ctx))

	err := second.Promote(ctx, clock.DefaultState())
	require.ErrorIs(t, err, ErrForegroundHeld)
	require.Contains(t, err.Error(), "pid")
	require.False(t, second.Promoted())
	require.Zero(t, tray.Len())

	require.NoError(t, first.Demote(ctx))
	require.NoError(t, second.Promote(ctx, clock.DefaultState()))
	require.NoError(t, second.Demote(ctx))
}

// TestManager_PromoteWithoutChannels surfaces rendering failures.
func TestManager_PromoteWithoutChannels(t *testing.T) {
	t.Parallel()

	m := NewManager(notification.NewTray(), "")

	err := m.Promote(context.Background(), clock.DefaultState())
	require.ErrorIs(t, err, notification.ErrUnknownChannel)
	require.False(t, m.Promoted())
}
