package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/soccer-timer/internal/api/grpc/timer"
	"github.com/oshokin/soccer-timer/internal/config"
	"github.com/oshokin/soccer-timer/internal/domain/clock"
	"github.com/oshokin/soccer-timer/internal/service/common"
	"github.com/oshokin/soccer-timer/internal/service/daemon"
	"github.com/oshokin/soccer-timer/internal/service/notification"
	"github.com/oshokin/soccer-timer/internal/service/watcher"
)

// daemonUnderTest is a running daemon and the paths it owns.
type daemonUnderTest struct {
	addr     string
	lockFile string
	stop     func()
}

// startDaemon runs the daemon on a free loopback port with a silent vibrator.
// The returned stop function cancels it and waits for Run to return.
func startDaemon(t *testing.T) *daemonUnderTest {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yaml")
	lockFile := filepath.Join(dir, "match-clock.lock")

	require.NoError(t, config.Save(cfgPath, &config.Config{
		BridgeAddress: "127.0.0.1:0",
		LockFile:      lockFile,
		Vibrator:      "log",
		Timeout:       3 * time.Second,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)

	go func() {
		done <- daemon.Run(ctx, &daemon.Options{ConfigPath: cfgPath, Ready: ready})
	}()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		cancel()
		require.NoError(t, err)
	}

	var once sync.Once

	stop := func() {
		once.Do(func() {
			cancel()
			require.NoError(t, <-done)
		})
	}

	t.Cleanup(stop)

	return &daemonUnderTest{addr: addr, lockFile: lockFile, stop: stop}
}

// dial connects to the daemon as a named actor.
func dial(t *testing.T, addr string) *common.Client {
	t.Helper()

	c, err := common.Dial(context.Background(), addr,
		common.WithCallTimeout(3*time.Second),
		common.WithActor(timer.Actor{Hostname: "pitch", Username: "referee"}),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

// statusText returns the text of the displayed status notification.
func statusText(t *testing.T, c *common.Client) string {
	t.Helper()

	list, err := c.Notifications(context.Background())
	require.NoError(t, err)

	for _, n := range list {
		if n.ID == notification.StatusID {
			return n.Text
		}
	}

	return ""
}

// TestBridge_Roundtrip drives a full match clock lifecycle through the bridge.
func TestBridge_Roundtrip(t *testing.T) {
	t.Parallel()

	d := startDaemon(t)
	c := dial(t, d.addr)
	ctx := context.Background()

	require.NoError(t, c.Ready(ctx))

	// Commands before start have no process to reach.
	require.NoError(t, c.Command(ctx, clock.CommandPause, nil))
	require.Empty(t, statusText(t, c))

	require.NoError(t, c.Command(ctx, clock.CommandStart, map[string]any{
		clock.ArgMatchTime: 754,
		clock.ArgPeriod:    2,
	}))
	require.Equal(t, "12:34 - Period 2 - Running", statusText(t, c))

	// Promotion took the foreground lock.
	_, err := os.Stat(d.lockFile + ".pid")
	require.NoError(t, err)

	require.NoError(t, c.Command(ctx, clock.CommandUpdate, map[string]any{
		clock.ArgMatchTime: 1500,
		clock.ArgPeriod:    2,
	}))
	require.Equal(t, "25:00 - Period 2 - Running", statusText(t, c))

	// Tapping the Pause action loops back into the dispatcher.
	require.NoError(t, c.Activate(ctx, notification.StatusID, "Pause"))
	require.Equal(t, "25:00 - Period 2 - Paused", statusText(t, c))

	err = c.Call(ctx, "ExplodeTimer", nil)
	require.Equal(t, codes.Unimplemented, status.Code(err))

	err = c.Activate(ctx, notification.AlertID, "Stop")
	require.Equal(t, codes.NotFound, status.Code(err))

	require.NoError(t, c.Command(ctx, clock.CommandStop, nil))

	list, err := c.Notifications(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	_, err = os.Stat(d.lockFile + ".pid")
	require.ErrorIs(t, err, os.ErrNotExist)

	// Stop is idempotent.
	require.NoError(t, c.Command(ctx, clock.CommandStop, nil))
}

// TestBridge_ShutdownTearsDown releases the lock when the daemon exits mid-match.
func TestBridge_ShutdownTearsDown(t *testing.T) {
	t.Parallel()

	d := startDaemon(t)
	c := dial(t, d.addr)

	require.NoError(t, c.Command(context.Background(), clock.CommandStart, nil))

	_, err := os.Stat(d.lockFile + ".pid")
	require.NoError(t, err)

	d.stop()

	_, err = os.Stat(d.lockFile + ".pid")
	require.ErrorIs(t, err, os.ErrNotExist)
}

// lockedBuffer collects watcher output from another goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

// TestWatcher_FollowsTheTray prints the tray as the clock starts.
func TestWatcher_FollowsTheTray(t *testing.T) {
	t.Parallel()

	d := startDaemon(t)
	c := dial(t, d.addr)

	var out lockedBuffer

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- watcher.Run(ctx, c, &out, 20*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "no notifications")
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, c.Command(context.Background(), clock.CommandStart, nil))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "00:00 - Period 1 - Running")
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
