//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	"github.com/oshokin/soccer-timer/internal/api/grpc/timer"
)

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	_, ok := ctx.Deadline()
	require.False(t, ok)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestClient_callContextCarriesActor attaches the configured actor as metadata.
func TestClient_callContextCarriesActor(t *testing.T) {
	t.Parallel()

	c := new(Client)
	WithActor(timer.Actor{Hostname: "pitch", Username: "referee"})(c)

	ctx, cancel := c.callContext(context.Background())
	defer cancel()

	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	require.Equal(t, []string{"pitch"}, md.Get(timer.MetadataHostname))
	require.Equal(t, []string{"referee"}, md.Get(timer.MetadataUsername))
}

// TestClient_CallRejectsUnencodableArguments fails before touching the network.
func TestClient_CallRejectsUnencodableArguments(t *testing.T) {
	t.Parallel()

	c := new(Client)

	err := c.Call(context.Background(), "StartTimer", map[string]any{"bad": make(chan int)})
	require.Error(t, err)
}
