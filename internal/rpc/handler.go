package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// Unary builds the method descriptor for a unary call of service S.
//
// Example:
//
//	rpc.Unary("spotme.Auth", "SignIn", AuthServer.SignIn)
func Unary[S, Req, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServerStream builds the descriptor for a server-streaming call of service S.
func ServerStream[S, Req, Resp any](method string, call func(S, *Req, grpc.ServerStreamingServer[Resp]) error) grpc.StreamDesc {
	return grpc.StreamDesc{
		StreamName:    method,
		ServerStreams: true,
		Handler: func(srv any, stream grpc.ServerStream) error {
			in := new(Req)
			if err := stream.RecvMsg(in); err != nil {
				return err
			}
			return call(srv.(S), in, &grpc.GenericServerStream[Req, Resp]{ServerStream: stream})
		},
	}
}

// Invoke performs a unary call with the JSON codec.
func Invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// OpenServerStream starts a server-streaming call and sends its only request.
func OpenServerStream[Req, Resp any](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	desc *grpc.StreamDesc,
	method string,
	in *Req,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[Resp], error) {
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	stream, err := cc.NewStream(ctx, desc, method, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[Req, Resp]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
