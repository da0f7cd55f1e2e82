//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/soccer-timer/internal/api/grpc/timer"
	"github.com/oshokin/soccer-timer/internal/config"
	"github.com/oshokin/soccer-timer/internal/domain/clock"
	"github.com/oshokin/soccer-timer/internal/service/notification"
)

// Client talks to the TimerService bridge of a running daemon.
type Client struct {
	// conn is the underlying gRPC connection to the daemon.
	conn *grpc.ClientConn
	// health checks whether the bridge is serving.
	health grpc_health_v1.HealthClient
	// actor is announced in metadata on every call when set.
	actor *timer.Actor

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for bridge calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor announces actor with every call.
func WithActor(actor timer.Actor) Option {
	return func(c *Client) {
		c.actor = &actor
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errNotServing is returned when the health check reports anything but SERVING.
	errNotServing = errors.New("bridge is not serving")
)

// Dial creates a client for the bridge at address. The connection is
// established lazily on the first call.
// Note: this uses insecure transport credentials; the bridge is meant to be
// reached over loopback.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial bridge: %w", err)
	}

	client := &Client{
		conn:        conn,
		health:      grpc_health_v1.NewHealthClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Command issues a timer command with loosely typed arguments.
func (c *Client) Command(ctx context.Context, command clock.Command, args map[string]any) error {
	return c.Call(ctx, timer.MethodName(command), args)
}

// Call invokes any bridge method by name. Unknown names reach the server and
// come back as Unimplemented.
func (c *Client) Call(ctx context.Context, method string, args map[string]any) error {
	request, err := structpb.NewStruct(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	reply := new(wrapperspb.BoolValue)
	if err = c.conn.Invoke(callCtx, timer.FullMethod(method), request, reply); err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}

	return nil
}

// Notifications lists what the daemon currently displays.
func (c *Client) Notifications(ctx context.Context) ([]notification.Notification, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	reply := new(structpb.Struct)

	err := c.conn.Invoke(callCtx, timer.FullMethod(timer.MethodListNotifications), new(structpb.Struct), reply)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return timer.DecodeNotifications(reply), nil
}

// Activate presses the action labelled label on notification id.
func (c *Client) Activate(ctx context.Context, id int, label string) error {
	return c.Call(ctx, timer.MethodActivateNotification, map[string]any{
		timer.ArgNotificationID: id,
		timer.ArgAction:         label,
	})
}

// Ready reports whether the bridge health check answers SERVING.
func (c *Client) Ready(ctx context.Context) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.health.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: timer.ServiceName})
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	if response.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: %s", errNotServing, response.GetStatus())
	}

	return nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline. The actor, if
// any, travels as outgoing metadata.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.actor != nil {
		ctx = timer.WithActor(ctx, *c.actor)
	}

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
