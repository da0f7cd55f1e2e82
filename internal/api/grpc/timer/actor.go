package timer

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/oshokin/soccer-timer/internal/logger"
)

// Metadata keys identifying the caller of a bridge method.
const (
	MetadataHostname = "x-actor-hostname"
	MetadataUsername = "x-actor-username"
)

// Actor identifies who issued a bridge call.
type Actor struct {
	Hostname string
	Username string
}

// WithActor returns an outgoing context announcing actor to the server.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return metadata.AppendToOutgoingContext(ctx,
		MetadataHostname, actor.Hostname,
		MetadataUsername, actor.Username,
	)
}

// ActorFromContext reads the caller announced in incoming metadata.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return Actor{}, false
	}

	actor := Actor{
		Hostname: first(md.Get(MetadataHostname)),
		Username: first(md.Get(MetadataUsername)),
	}

	return actor, actor.Hostname != "" || actor.Username != ""
}

// LoggingInterceptor scopes the request logger with the method and caller,
// then logs the outcome of every bridge call.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = logger.WithKV(ctx, "method", info.FullMethod)

		if actor, ok := ActorFromContext(ctx); ok {
			ctx = logger.WithKV(ctx, "actor_hostname", actor.Hostname, "actor_username", actor.Username)
		}

		reply, err := handler(ctx, req)
		if err != nil {
			logger.WarnKV(ctx, "Bridge call failed", "error", err)

			return nil, err
		}

		logger.DebugKV(ctx, "Bridge call handled")

		return reply, nil
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}

	return values[0]
}
