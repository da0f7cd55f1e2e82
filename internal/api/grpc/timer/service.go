package timer

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/soccer-timer/internal/domain/clock"
)

// ServiceName is the fully qualified gRPC service name of the bridge.
const ServiceName = "soccertime.v1.TimerService"

const (
	// MethodListNotifications returns the notifications currently displayed.
	MethodListNotifications = "ListNotifications"
	// MethodActivateNotification presses an action on a displayed notification.
	MethodActivateNotification = "ActivateNotification"
)

const (
	// ArgNotificationID names the notification slot in ActivateNotification.
	ArgNotificationID = "id"
	// ArgAction names the action label in ActivateNotification.
	ArgAction = "action"
)

// MethodName returns the RPC method name carrying command, e.g. StartTimer for startTimer.
func MethodName(command clock.Command) string {
	name := string(command)
	if name == "" {
		return ""
	}

	return strings.ToUpper(name[:1]) + name[1:]
}

// CommandForMethod resolves an RPC method name back to its command.
func CommandForMethod(method string) (clock.Command, error) {
	if method == "" {
		return clock.ParseCommand(method)
	}

	return clock.ParseCommand(strings.ToLower(method[:1]) + method[1:])
}

// FullMethod returns the path used on the wire for method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// serviceDesc describes the bridge for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Equivalent of a generated descriptor.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*bridge)(nil),
	Methods:     methodDescs(),
	Streams:     []grpc.StreamDesc{},
	Metadata:    "soccertime/v1/timer.proto",
}

// bridge is the handler contract checked by RegisterService.
type bridge interface {
	command(ctx context.Context, command clock.Command, in *structpb.Struct) (any, error)
	listNotifications(ctx context.Context, in *structpb.Struct) (any, error)
	activateNotification(ctx context.Context, in *structpb.Struct) (any, error)
}

// methodDescs lists one unary method per command plus the tray methods.
func methodDescs() []grpc.MethodDesc {
	commands := clock.Commands()
	descs := make([]grpc.MethodDesc, 0, len(commands)+2)

	for _, command := range commands {
		descs = append(descs, grpc.MethodDesc{
			MethodName: MethodName(command),
			Handler: unaryHandler(MethodName(command), func(b bridge, ctx context.Context, in *structpb.Struct) (any, error) {
				return b.command(ctx, command, in)
			}),
		})
	}

	descs = append(descs,
		grpc.MethodDesc{
			MethodName: MethodListNotifications,
			Handler:    unaryHandler(MethodListNotifications, bridge.listNotifications),
		},
		grpc.MethodDesc{
			MethodName: MethodActivateNotification,
			Handler:    unaryHandler(MethodActivateNotification, bridge.activateNotification),
		},
	)

	return descs
}

// unaryHandler adapts call to the signature grpc expects, decoding the
// Struct request and honoring any configured interceptor.
func unaryHandler(
	method string,
	call func(b bridge, ctx context.Context, in *structpb.Struct) (any, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}

		b, _ := srv.(bridge) //nolint:errcheck // RegisterService verified the type.

		if interceptor == nil {
			return call(b, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}

		handler := func(ctx context.Context, req any) (any, error) {
			request, _ := req.(*structpb.Struct) //nolint:errcheck // Decoded above.

			return call(b, ctx, request)
		}

		return interceptor(ctx, in, info, handler)
	}
}
