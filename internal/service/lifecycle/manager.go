package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	ps "github.com/mitchellh/go-ps"

	"github.com/oshokin/soccer-timer/internal/domain/clock"
	"github.com/oshokin/soccer-timer/internal/logger"
	"github.com/oshokin/soccer-timer/internal/service/notification"
)

// pidFilePermissions restricts the PID side file to the owner.
const pidFilePermissions = 0o600

// ErrForegroundHeld is returned when another process already holds the foreground lock.
var ErrForegroundHeld = errors.New("foreground lock is held by another process")

// Manager registers channels and holds the foreground lock while promoted.
type Manager struct {
	// tray receives channel registrations and the foreground notification.
	tray *notification.Tray
	// lock is nil when no lock file is configured.
	lock *flock.Flock

	mu       sync.Mutex
	promoted bool
}

// NewManager returns a manager posting into tray. An empty lockPath disables
// the cross-process foreground lock.
func NewManager(tray *notification.Tray, lockPath string) *Manager {
	m := &Manager{tray: tray}
	if lockPath != "" {
		m.lock = flock.New(lockPath)
	}

	return m
}

// RegisterChannels registers the status and alert channels. Repeating it is a no-op.
func (m *Manager) RegisterChannels(ctx context.Context) error {
	for _, ch := range []notification.Channel{notification.StatusChannel(), notification.AlertChannel()} {
		if m.tray.RegisterChannel(ch) {
			logger.DebugKV(ctx, "Notification channel registered", "channel", ch.ID)
		}
	}

	return nil
}

// Promote makes the caller the foreground instance and attaches the status
// notification for state. Promoting an already promoted manager only
// refreshes the notification.
func (m *Manager) Promote(ctx context.Context, state clock.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acquired := false

	if !m.promoted {
		if err := m.acquire(); err != nil {
			return err
		}

		acquired = true
	}

	if err := m.tray.Post(notification.StatusNotification(state)); err != nil {
		if acquired {
			_ = m.release()
		}

		return fmt.Errorf("attach foreground notification: %w", err)
	}

	if acquired {
		m.promoted = true

		logger.InfoKV(ctx, "Promoted to foreground", "lock_file", m.lockPath())
	}

	return nil
}

// Demote removes the foreground notification and releases the lock.
func (m *Manager) Demote(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tray.Cancel(notification.StatusID)

	if !m.promoted {
		return nil
	}

	m.promoted = false

	if err := m.release(); err != nil {
		return err
	}

	logger.Info(ctx, "Demoted from foreground")

	return nil
}

// Promoted reports whether the manager currently holds the foreground.
func (m *Manager) Promoted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.promoted
}

func (m *Manager) acquire() error {
	if m.lock == nil {
		return nil
	}

	locked, err := m.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire foreground lock %s: %w", m.lock.Path(), err)
	}

	if !locked {
		return fmt.Errorf("%s held by %s: %w", m.lock.Path(), m.describeHolder(), ErrForegroundHeld)
	}

	pid := strconv.Itoa(os.Getpid())
	if err = os.WriteFile(m.pidPath(), []byte(pid), pidFilePermissions); err != nil {
		_ = m.lock.Unlock()

		return fmt.Errorf("write foreground pid: %w", err)
	}

	return nil
}

func (m *Manager) release() error {
	if m.lock == nil {
		return nil
	}

	_ = os.Remove(m.pidPath())

	if err := m.lock.Unlock(); err != nil {
		return fmt.Errorf("release foreground lock: %w", err)
	}

	return nil
}

// describeHolder names the process recorded in the PID side file.
func (m *Manager) describeHolder() string {
	contents, err := os.ReadFile(m.pidPath())
	if err != nil {
		return "unknown process"
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil {
		return "unknown process"
	}

	process, err := ps.FindProcess(pid)
	if err != nil || process == nil {
		return fmt.Sprintf("pid %d (not running)", pid)
	}

	return fmt.Sprintf("pid %d (%s)", pid, process.Executable())
}

func (m *Manager) lockPath() string {
	if m.lock == nil {
		return ""
	}

	return m.lock.Path()
}

func (m *Manager) pidPath() string {
	return m.lock.Path() + ".pid"
}
