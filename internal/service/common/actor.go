//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"

	"github.com/oshokin/soccer-timer/internal/api/grpc/timer"
)

// DetectActor gathers host and user information announced with every bridge call.
func DetectActor() (timer.Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return timer.Actor{}, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return timer.Actor{}, fmt.Errorf("current user: %w", err)
	}

	return timer.Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
