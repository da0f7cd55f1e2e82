package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/soccer-timer/internal/domain/clock"
	"github.com/oshokin/soccer-timer/internal/logger"
	"github.com/oshokin/soccer-timer/internal/metrics"
)

// mailboxSize bounds how many envelopes may wait for the loop.
const mailboxSize = 32

// ErrTerminated is returned when the coordinator process has already stopped.
var ErrTerminated = errors.New("coordinator process terminated")

// Presenter renders the coordinator's notifications.
type Presenter interface {
	RenderStatus(ctx context.Context, state clock.State) error
	RenderAlert(ctx context.Context, period, leadSeconds int) error
	WithdrawAlert(ctx context.Context) error
	WithdrawAll(ctx context.Context) error
}

// Lifecycle promotes and demotes the coordinator process.
type Lifecycle interface {
	RegisterChannels(ctx context.Context) error
	Promote(ctx context.Context, state clock.State) error
	Demote(ctx context.Context) error
}

// Vibrator issues a single pulse and returns without waiting for it to end.
type Vibrator interface {
	Vibrate(ctx context.Context, d time.Duration) error
}

// Dependencies are the collaborators of a coordinator process.
type Dependencies struct {
	Presenter Presenter
	Lifecycle Lifecycle
	Vibrator  Vibrator
	// Metrics is optional.
	Metrics *metrics.Coordinator
}

// Snapshot is a consistent view of the coordinator at one instant.
type Snapshot struct {
	State      clock.State
	Alert      clock.AlertState
	Terminated bool
}

// envelopeKind distinguishes mailbox entries.
type envelopeKind int

const (
	kindCommand envelopeKind = iota
	kindAlertDue
	kindTick
	kindSnapshot
)

// envelope is a single mailbox entry.
type envelope struct {
	kind envelopeKind
	// id correlates log lines of one command.
	id      string
	command clock.Command
	args    map[string]any
	// token is the generation a deferred event was armed with.
	token    uint64
	ack      chan error
	snapshot chan Snapshot
}

// Coordinator is one coordinator process. Everything below mailbox is owned
// by the goroutine executing Run.
type Coordinator struct {
	deps    Dependencies
	mailbox chan envelope
	done    chan struct{}

	state clock.State
	alert clock.AlertState
	// generation invalidates armed alert callbacks when bumped.
	generation uint64
	// alertSession invalidates vibration ticks of an earlier alerting session.
	alertSession uint64
	terminated   bool
}

// New creates a coordinator process with default state. Call Run to start it.
func New(deps Dependencies) *Coordinator {
	return &Coordinator{
		deps:    deps,
		mailbox: make(chan envelope, mailboxSize),
		done:    make(chan struct{}),
		state:   clock.DefaultState(),
		alert:   clock.AlertInactive,
	}
}

// Run registers the notification channels and processes the mailbox until a
// stop command terminates the process or ctx is cancelled. Cancellation is
// treated as a host-initiated destroy and always tears resources down.
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.done)

	ctx = logger.WithName(ctx, "coordinator")

	if err := c.deps.Lifecycle.RegisterChannels(ctx); err != nil {
		logger.ErrorKV(ctx, "Failed to register notification channels", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			c.destroy(context.WithoutCancel(ctx))

			return
		case env := <-c.mailbox:
			c.handle(ctx, env)

			if c.terminated {
				logger.Info(ctx, "Coordinator process terminated")

				return
			}
		}
	}
}

// Done is closed once Run has returned.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Terminated reports whether Run has returned.
func (c *Coordinator) Terminated() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Dispatch enqueues a command and returns immediately. The returned channel
// receives exactly one value once the command has been applied.
func (c *Coordinator) Dispatch(ctx context.Context, command clock.Command, args map[string]any) (<-chan error, error) {
	env := envelope{
		kind:    kindCommand,
		id:      uuid.NewString(),
		command: command,
		args:    args,
		ack:     make(chan error, 1),
	}

	if err := c.send(ctx, env); err != nil {
		return nil, err
	}

	return env.ack, nil
}

// Await waits for an acknowledgement returned by Dispatch.
func (c *Coordinator) Await(ctx context.Context, ack <-chan error) error {
	select {
	case err := <-ack:
		return err
	case <-c.done:
		select {
		case err := <-ack:
			return err
		default:
			return ErrTerminated
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the state as seen by the loop between two events.
func (c *Coordinator) Snapshot(ctx context.Context) (Snapshot, error) {
	env := envelope{
		kind:     kindSnapshot,
		snapshot: make(chan Snapshot, 1),
	}

	if err := c.send(ctx, env); err != nil {
		return Snapshot{}, err
	}

	select {
	case s := <-env.snapshot:
		return s, nil
	case <-c.done:
		select {
		case s := <-env.snapshot:
			return s, nil
		default:
			return Snapshot{}, ErrTerminated
		}
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (c *Coordinator) send(ctx context.Context, env envelope) error {
	if c.Terminated() {
		return ErrTerminated
	}

	select {
	case c.mailbox <- env:
		return nil
	case <-c.done:
		return ErrTerminated
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post is used by timer callbacks. It never blocks a terminated process.
func (c *Coordinator) post(env envelope) {
	select {
	case c.mailbox <- env:
	case <-c.done:
	}
}

// after arms a one-shot timer that posts env back into the mailbox.
func (c *Coordinator) after(d time.Duration, env envelope) {
	time.AfterFunc(d, func() { c.post(env) })
}

func (c *Coordinator) handle(ctx context.Context, env envelope) {
	switch env.kind {
	case kindCommand:
		ctx = logger.WithKV(ctx, "command", env.command, "command_id", env.id)

		err := c.apply(ctx, env.command, env.args)
		if err != nil {
			logger.ErrorKV(ctx, "Command failed", "error", err)
		} else {
			logger.DebugKV(ctx, "Command applied", "state", c.state, "alert", c.alert)
		}

		c.deps.Metrics.CommandProcessed(string(env.command), err)
		env.ack <- err
	case kindAlertDue:
		c.onAlertDue(ctx, env.token)
	case kindTick:
		c.onTick(ctx, env.token)
	case kindSnapshot:
		env.snapshot <- c.snapshot()
	}

	c.deps.Metrics.SetAlertState(int(c.alert))
}

func (c *Coordinator) snapshot() Snapshot {
	return Snapshot{
		State:      c.state,
		Alert:      c.alert,
		Terminated: c.terminated,
	}
}
