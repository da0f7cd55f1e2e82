package watcher

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/soccer-timer/internal/domain/clock"
	"github.com/oshokin/soccer-timer/internal/service/notification"
)

// scriptedSource replays a fixed sequence of tray contents, repeating the last.
type scriptedSource struct {
	mu    sync.Mutex
	steps [][]notification.Notification
}

func (s *scriptedSource) Notifications(context.Context) ([]notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.steps[0]
	if len(s.steps) > 1 {
		s.steps = s.steps[1:]
	}

	return current, nil
}

// lockedBuffer is a bytes.Buffer safe for one writer and one reader.
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

// TestRun_PrintsOnlyChanges renders the tray once per distinct content.
func TestRun_PrintsOnlyChanges(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		status := notification.StatusNotification(clock.StartArgs{}.Apply())
		alert := notification.AlertNotification(1, 5)

		source := &scriptedSource{steps: [][]notification.Notification{
			nil,
			{status},
			{status},
			{status, alert},
			nil,
		}}

		var out lockedBuffer

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		go func() {
			done <- Run(ctx, source, &out, time.Second)
		}()

		time.Sleep(10 * time.Second)
		synctest.Wait()
		cancel()
		require.NoError(t, <-done)

		text := out.String()
		require.Equal(t, 2, strings.Count(text, "no notifications"))
		require.Equal(t, 2, strings.Count(text, "00:00 - Period 1 - Running"))
		require.Equal(t, 1, strings.Count(text, "Period 1 will end in 5 seconds"))
	})
}
