package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/soccer-timer/internal/domain/clock"
	"github.com/oshokin/soccer-timer/internal/service/lifecycle"
	"github.com/oshokin/soccer-timer/internal/service/notification"
)

var (
	errTestPromote = errors.New("foreground service not allowed")
	errTestRender  = errors.New("notification manager unavailable")
)

// alertDelay is the delay for the default alert lead.
const alertDelay = 45*time.Minute - 5*time.Second

// recordingVibrator counts pulses.
type recordingVibrator struct {
	mu     sync.Mutex
	pulses []time.Duration
}

// Vibrate records the pulse duration.
func (v *recordingVibrator) Vibrate(_ context.Context, d time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.pulses = append(v.pulses, d)

	return nil
}

// count returns the number of recorded pulses.
func (v *recordingVibrator) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return len(v.pulses)
}

// first returns the duration of the first pulse.
func (v *recordingVibrator) first() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.pulses) == 0 {
		return 0
	}

	return v.pulses[0]
}

// failingLifecycle wraps a real manager and can reject promotion.
type failingLifecycle struct {
	*lifecycle.Manager

	// promoteErr is returned by Promote when set.
	promoteErr error
}

// Promote fails with promoteErr or delegates to the wrapped manager.
func (f *failingLifecycle) Promote(ctx context.Context, state clock.State) error {
	if f.promoteErr != nil {
		return f.promoteErr
	}

	return f.Manager.Promote(ctx, state)
}

// failingPresenter wraps a real presenter and can reject status rendering.
type failingPresenter struct {
	*notification.Presenter

	// renderErr is returned by RenderStatus when set.
	renderErr error
}

// RenderStatus fails with renderErr or delegates to the wrapped presenter.
func (f *failingPresenter) RenderStatus(ctx context.Context, state clock.State) error {
	if f.renderErr != nil {
		return f.renderErr
	}

	return f.Presenter.RenderStatus(ctx, state)
}

// harness runs a coordinator process inside the current synctest bubble.
type harness struct {
	t       *testing.T
	c       *Coordinator
	tray    *notification.Tray
	vib     *recordingVibrator
	manager *lifecycle.Manager
	cancel  context.CancelFunc
}

// newHarness starts a coordinator backed by an in-memory tray.
func newHarness(t *testing.T, customize ...func(*harness, *Dependencies)) *harness {
	t.Helper()

	h := &harness{
		t:    t,
		tray: notification.NewTray(),
		vib:  new(recordingVibrator),
	}

	h.manager = lifecycle.NewManager(h.tray, "")

	deps := Dependencies{
		Presenter: notification.NewPresenter(h.tray),
		Lifecycle: h.manager,
		Vibrator:  h.vib,
	}

	for _, fn := range customize {
		fn(h, &deps)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.c = New(deps)

	go h.c.Run(ctx)

	return h
}

// close destroys the process and waits for it to exit.
func (h *harness) close() {
	h.cancel()
	<-h.c.Done()
}

// do applies a command and returns its acknowledgement.
func (h *harness) do(command clock.Command, args map[string]any) error {
	h.t.Helper()

	ack, err := h.c.Dispatch(context.Background(), command, args)
	require.NoError(h.t, err)

	return h.c.Await(context.Background(), ack)
}

// mustDo applies a command that is expected to succeed.
func (h *harness) mustDo(command clock.Command, args map[string]any) {
	h.t.Helper()
	require.NoError(h.t, h.do(command, args))
}

// snapshot returns the current coordinator view.
func (h *harness) snapshot() Snapshot {
	h.t.Helper()

	s, err := h.c.Snapshot(context.Background())
	require.NoError(h.t, err)

	return s
}

// statusText returns the text of the status notification, or "" when absent.
func (h *harness) statusText() string {
	n, ok := h.tray.Get(notification.StatusID)
	if !ok {
		return ""
	}

	return n.Text
}

// hasAlert reports whether the alert notification is displayed.
func (h *harness) hasAlert() bool {
	_, ok := h.tray.Get(notification.AlertID)

	return ok
}

// startArgs builds bridge-style start arguments.
func startArgs(matchTime, period int, paused bool, lead int) map[string]any {
	return map[string]any{
		clock.ArgMatchTime:        float64(matchTime),
		clock.ArgPeriod:           float64(period),
		clock.ArgIsPaused:         paused,
		clock.ArgAlertTimeSeconds: float64(lead),
	}
}

// updateArgs builds bridge-style update arguments.
func updateArgs(matchTime, period int, paused bool) map[string]any {
	return map[string]any{
		clock.ArgMatchTime: float64(matchTime),
		clock.ArgPeriod:    float64(period),
		clock.ArgIsPaused:  paused,
	}
}
