package notification

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Importance ranks a channel, mirroring how loudly its notifications may interrupt.
type Importance int

const (
	// ImportanceLow channels display silently.
	ImportanceLow Importance = iota
	// ImportanceHigh channels may interrupt the user.
	ImportanceHigh
)

// Priority ranks a single notification within its channel.
type Priority int

const (
	// PriorityLow is used for the persistent status notification.
	PriorityLow Priority = iota
	// PriorityHigh is used for the period-end alert.
	PriorityHigh
)

// Channel is a notification category that must be registered before use.
type Channel struct {
	// ID identifies the channel.
	ID string
	// Name is the user-visible channel name.
	Name string
	// Description explains what the channel is for.
	Description string
	// Importance is the channel importance.
	Importance Importance
	// Vibration reports whether posts on the channel may vibrate.
	Vibration bool
}

// Action is a button on a notification that issues a coordinator command.
type Action struct {
	// Label is the button text.
	Label string
	// Command is the coordinator command name issued when the action is activated.
	Command string
}

// Notification is the content of a single tray slot.
type Notification struct {
	ID         int
	ChannelID  string
	Title      string
	Text       string
	Priority   Priority
	Ongoing    bool
	AutoCancel bool
	Actions    []Action
}

// ActionHandler receives the command bound to an activated action.
type ActionHandler func(ctx context.Context, command string) error

var (
	// ErrUnknownChannel is returned when posting to a channel that was never registered.
	ErrUnknownChannel = errors.New("notification channel is not registered")
	// ErrNotFound is returned when a slot or action does not exist.
	ErrNotFound = errors.New("notification not found")
	// errNoActionHandler is returned when an action is activated before a handler is set.
	errNoActionHandler = errors.New("no action handler configured")
)

// Tray stores channels and posted notifications. It is safe for concurrent use.
type Tray struct {
	mu       sync.Mutex
	channels map[string]Channel
	slots    map[int]Notification
	handler  ActionHandler
}

// NewTray returns an empty tray.
func NewTray() *Tray {
	return &Tray{
		channels: make(map[string]Channel, 2),
		slots:    make(map[int]Notification, 2),
	}
}

// RegisterChannel adds or updates a channel. It reports whether anything changed,
// so registering identical parameters twice is a no-op.
func (t *Tray) RegisterChannel(ch Channel) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.channels[ch.ID]; ok && existing == ch {
		return false
	}

	t.channels[ch.ID] = ch

	return true
}

// Channel returns a registered channel by ID.
func (t *Tray) Channel(id string) (Channel, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, ok := t.channels[id]

	return ch, ok
}

// Post places n into its slot, replacing any previous content.
func (t *Tray) Post(n Notification) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.channels[n.ChannelID]; !ok {
		return fmt.Errorf("post notification %d to %q: %w", n.ID, n.ChannelID, ErrUnknownChannel)
	}

	n.Actions = slices.Clone(n.Actions)
	t.slots[n.ID] = n

	return nil
}

// Cancel removes the notification in slot id. Cancelling an empty slot is a no-op.
func (t *Tray) Cancel(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.slots, id)
}

// CancelAll empties every slot.
func (t *Tray) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	clear(t.slots)
}

// Get returns the notification in slot id.
func (t *Tray) Get(id int) (Notification, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.slots[id]
	if ok {
		n.Actions = slices.Clone(n.Actions)
	}

	return n, ok
}

// List returns the visible notifications ordered by slot.
func (t *Tray) List() []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]Notification, 0, len(t.slots))
	for _, n := range t.slots {
		n.Actions = slices.Clone(n.Actions)
		result = append(result, n)
	}

	slices.SortFunc(result, func(a, b Notification) int { return a.ID - b.ID })

	return result
}

// Len returns the number of occupied slots.
func (t *Tray) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.slots)
}

// SetActionHandler installs the callback used by Activate.
func (t *Tray) SetActionHandler(h ActionHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.handler = h
}

// Activate presses the action labelled label on notification id.
// The handler runs outside the tray lock.
func (t *Tray) Activate(ctx context.Context, id int, label string) error {
	t.mu.Lock()
	n, ok := t.slots[id]
	handler := t.handler
	t.mu.Unlock()

	if !ok {
		return fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}

	idx := slices.IndexFunc(n.Actions, func(a Action) bool { return a.Label == label })
	if idx < 0 {
		return fmt.Errorf("action %q on notification %d: %w", label, id, ErrNotFound)
	}

	if handler == nil {
		return errNoActionHandler
	}

	return handler(ctx, n.Actions[idx].Command)
}
