package timer

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/soccer-timer/internal/domain/clock"
	"github.com/oshokin/soccer-timer/internal/logger"
	"github.com/oshokin/soccer-timer/internal/service/coordinator"
	"github.com/oshokin/soccer-timer/internal/service/notification"
)

// Commands applies coordinator commands and waits for their acknowledgement.
type Commands interface {
	Do(ctx context.Context, command clock.Command, args map[string]any) error
}

// Tray exposes the displayed notifications and their actions.
type Tray interface {
	List() []notification.Notification
	Activate(ctx context.Context, id int, label string) error
}

// Server implements the TimerService bridge.
type Server struct {
	// commands receives every timer command.
	commands Commands
	// tray backs the notification methods.
	tray Tray
}

// NewServer wires the command sink and notification tray into a gRPC handler.
func NewServer(commands Commands, tray Tray) *Server {
	return &Server{
		commands: commands,
		tray:     tray,
	}
}

// Register attaches the bridge to a gRPC server.
func (s *Server) Register(registrar grpc.ServiceRegistrar) {
	registrar.RegisterService(&serviceDesc, s)
}

// UnknownMethodHandler is a server option answering every method outside the
// bridge with Unimplemented.
func UnknownMethodHandler() grpc.ServerOption {
	return grpc.UnknownServiceHandler(func(_ any, stream grpc.ServerStream) error {
		method, _ := grpc.MethodFromServerStream(stream)
		logger.WarnKV(stream.Context(), "Unknown bridge method", "method", method)

		return status.Errorf(codes.Unimplemented, "method %s is not implemented", method)
	})
}

func (s *Server) command(ctx context.Context, command clock.Command, in *structpb.Struct) (any, error) {
	if err := s.commands.Do(ctx, command, in.AsMap()); err != nil {
		return nil, toStatus(err)
	}

	return wrapperspb.Bool(true), nil
}

func (s *Server) listNotifications(_ context.Context, _ *structpb.Struct) (any, error) {
	reply, err := EncodeNotifications(s.tray.List())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode notifications: %v", err)
	}

	return reply, nil
}

func (s *Server) activateNotification(ctx context.Context, in *structpb.Struct) (any, error) {
	args := in.AsMap()

	id, ok := clock.IntArg(args, ArgNotificationID)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "notification id is required")
	}

	label, _ := args[ArgAction].(string) //nolint:errcheck // Missing label is rejected below.
	if label == "" {
		return nil, status.Error(codes.InvalidArgument, "action is required")
	}

	if err := s.tray.Activate(ctx, id, label); err != nil {
		return nil, toStatus(err)
	}

	return wrapperspb.Bool(true), nil
}

// toStatus maps domain errors to gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, clock.ErrUnknownCommand):
		return status.Error(codes.Unimplemented, err.Error())
	case errors.Is(err, notification.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, coordinator.ErrHostClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
