package ctl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseArgs keeps numbers and booleans typed.
func TestParseArgs(t *testing.T) {
	t.Parallel()

	args, err := ParseArgs([]string{"matchTime=2700", "isPaused=true", "note=half time", "empty="})
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"matchTime": 2700,
		"isPaused":  true,
		"note":      "half time",
		"empty":     "",
	}, args)

	_, err = ParseArgs([]string{"period"})
	require.ErrorIs(t, err, errMalformedArg)

	_, err = ParseArgs([]string{"=1"})
	require.ErrorIs(t, err, errMalformedArg)
}
