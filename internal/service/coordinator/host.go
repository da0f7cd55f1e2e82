package coordinator

import (
	"context"
	"errors"
	"sync"

	"github.com/oshokin/soccer-timer/internal/domain/clock"
	"github.com/oshokin/soccer-timer/internal/logger"
)

// ErrHostClosed is returned for commands issued after Close.
var ErrHostClosed = errors.New("coordinator host closed")

// Host creates coordinator processes on demand and routes commands to the
// live one. Only start and resume bring a process to life; other commands
// issued while nothing runs are no-ops.
type Host struct {
	ctx  context.Context
	deps Dependencies

	mu      sync.Mutex
	current *Coordinator
	cancel  context.CancelFunc
	closed  bool
	wg      sync.WaitGroup
}

// NewHost returns a host whose processes inherit ctx.
func NewHost(ctx context.Context, deps Dependencies) *Host {
	return &Host{
		ctx:  ctx,
		deps: deps,
	}
}

// Do applies a command and waits for its acknowledgement.
func (h *Host) Do(ctx context.Context, command clock.Command, args map[string]any) error {
	// A process may terminate between lookup and delivery; the second
	// attempt then reaches a fresh process or becomes a no-op.
	for range 2 {
		c, err := h.process(command)
		if err != nil {
			return err
		}

		if c == nil {
			logger.DebugKV(ctx, "No coordinator process, command ignored", "command", command)

			return nil
		}

		ack, err := c.Dispatch(ctx, command, args)
		if errors.Is(err, ErrTerminated) {
			continue
		}

		if err != nil {
			return err
		}

		err = c.Await(ctx, ack)
		if errors.Is(err, ErrTerminated) {
			continue
		}

		return err
	}

	return ErrTerminated
}

// DoNamed resolves a bridge method name and applies it.
// Unknown names are rejected without touching any process.
func (h *Host) DoNamed(ctx context.Context, name string, args map[string]any) error {
	command, err := clock.ParseCommand(name)
	if err != nil {
		return err
	}

	return h.Do(ctx, command, args)
}

// Snapshot returns the state of the live process, or the discarded default
// state when none is running.
func (h *Host) Snapshot(ctx context.Context) (Snapshot, error) {
	h.mu.Lock()
	c := h.current
	h.mu.Unlock()

	if c != nil {
		s, err := c.Snapshot(ctx)
		if !errors.Is(err, ErrTerminated) {
			return s, err
		}
	}

	return Snapshot{State: clock.DefaultState(), Alert: clock.AlertInactive, Terminated: true}, nil
}

// Close destroys the live process and waits for it to finish tearing down.
func (h *Host) Close() {
	h.mu.Lock()
	h.closed = true

	if h.cancel != nil {
		h.cancel()
	}
	h.mu.Unlock()

	h.wg.Wait()
}

// process returns the live coordinator, spawning one for commands that may
// create it.
func (h *Host) process(command clock.Command) (*Coordinator, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHostClosed
	}

	if h.current != nil && !h.current.Terminated() {
		return h.current, nil
	}

	if !command.Spawns() {
		return nil, nil //nolint:nilnil // No live process is a valid outcome.
	}

	if h.cancel != nil {
		h.cancel()
	}

	ctx, cancel := context.WithCancel(h.ctx)
	c := New(h.deps)

	h.current = c
	h.cancel = cancel

	h.wg.Add(1)

	go func() {
		defer h.wg.Done()

		c.Run(ctx)
	}()

	logger.Debug(ctx, "Coordinator process spawned")

	return c, nil
}
