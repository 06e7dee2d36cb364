package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The control plane speaks only well-known protobuf types, so no generated
// message code is needed; this file plays the part of the _grpc.pb.go stub.

const ServiceName = "synapse.control.v1.ConsoleControl"

const (
	methodGetSnapshot = "/" + ServiceName + "/GetSnapshot"
	methodLogin       = "/" + ServiceName + "/Login"
	methodLogout      = "/" + ServiceName + "/Logout"
	methodReconnect   = "/" + ServiceName + "/Reconnect"
	methodSelectModel = "/" + ServiceName + "/SelectModel"
)

// -----------------------------------------------------------------------------
// Server API
// -----------------------------------------------------------------------------

type ConsoleControlServer interface {
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Reconnect(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SelectModel(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

func RegisterConsoleControlServer(s grpc.ServiceRegistrar, srv ConsoleControlServer) {
	s.RegisterService(&ConsoleControl_ServiceDesc, srv)
}

var ConsoleControl_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ConsoleControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetSnapshot",
			Handler: unaryHandler(methodGetSnapshot, func() *emptypb.Empty { return new(emptypb.Empty) },
				func(srv ConsoleControlServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
					return srv.GetSnapshot(ctx, in)
				}),
		},
		{
			MethodName: "Login",
			Handler: unaryHandler(methodLogin, func() *structpb.Struct { return new(structpb.Struct) },
				func(srv ConsoleControlServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
					return srv.Login(ctx, in)
				}),
		},
		{
			MethodName: "Logout",
			Handler: unaryHandler(methodLogout, func() *emptypb.Empty { return new(emptypb.Empty) },
				func(srv ConsoleControlServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
					return srv.Logout(ctx, in)
				}),
		},
		{
			MethodName: "Reconnect",
			Handler: unaryHandler(methodReconnect, func() *emptypb.Empty { return new(emptypb.Empty) },
				func(srv ConsoleControlServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
					return srv.Reconnect(ctx, in)
				}),
		},
		{
			MethodName: "SelectModel",
			Handler: unaryHandler(methodSelectModel, func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
				func(srv ConsoleControlServer, ctx context.Context, in *wrapperspb.StringValue) (proto.Message, error) {
					return srv.SelectModel(ctx, in)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "synapse/control/v1/control.proto",
}

// unaryHandler decodes the request, then calls through the interceptor chain.
func unaryHandler[In proto.Message](
	fullMethod string,
	newIn func() In,
	call func(ConsoleControlServer, context.Context, In) (proto.Message, error),
) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := newIn()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ConsoleControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ConsoleControlServer), ctx, req.(In))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// -----------------------------------------------------------------------------
// Client API
// -----------------------------------------------------------------------------

type ConsoleControlClient struct {
	cc grpc.ClientConnInterface
}

func NewConsoleControlClient(cc grpc.ClientConnInterface) *ConsoleControlClient {
	return &ConsoleControlClient{cc: cc}
}

func (c *ConsoleControlClient) GetSnapshot(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetSnapshot, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ConsoleControlClient) Login(ctx context.Context, username, password string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"username": username, "password": password})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodLogin, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ConsoleControlClient) Logout(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, methodLogout, &emptypb.Empty{}, new(emptypb.Empty), opts...)
}

func (c *ConsoleControlClient) Reconnect(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodReconnect, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ConsoleControlClient) SelectModel(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodSelectModel, wrapperspb.String(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
