package grpcservice

import (
	"context"

	"google.golang.org/grpc"

	"go.klb.dev/clipmini/internal/message"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "clipmini.v1.HistoryService"

// Full method names.
const (
	ListMethod           = "/" + ServiceName + "/List"
	ActivateMethod       = "/" + ServiceName + "/Activate"
	DeleteMethod         = "/" + ServiceName + "/Delete"
	ClearAllMethod       = "/" + ServiceName + "/ClearAll"
	SetPrivateModeMethod = "/" + ServiceName + "/SetPrivateMode"
	SessionMethod        = "/" + ServiceName + "/Session"
	WatchMethod          = "/" + ServiceName + "/Watch"
)

// History is the request/response surface of the service. Both Service and
// Client implement it, so the HTTP gateway can sit on either.
type History interface {
	List(context.Context, *message.ListRequest) (*message.State, error)
	Activate(context.Context, *message.TextRequest) (*message.Empty, error)
	Delete(context.Context, *message.TextRequest) (*message.Empty, error)
	ClearAll(context.Context, *message.ClearRequest) (*message.Empty, error)
	SetPrivateMode(context.Context, *message.PrivateModeRequest) (*message.PrivateModeResponse, error)
	Session(context.Context, *message.SessionRequest) (*message.Empty, error)
}

// HistoryServer is the server API for HistoryService.
type HistoryServer interface {
	History
	Watch(*message.WatchRequest, WatchStream) error
}

// WatchStream is the server side of a Watch call.
type WatchStream interface {
	Send(*message.Event) error
	Context() context.Context
}

type watchStream struct {
	grpc.ServerStream
}

func (s *watchStream) Send(ev *message.Event) error { return s.ServerStream.SendMsg(ev) }

// ServiceDesc describes HistoryService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HistoryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("List", ListMethod, History.List),
		unary("Activate", ActivateMethod, History.Activate),
		unary("Delete", DeleteMethod, History.Delete),
		unary("ClearAll", ClearAllMethod, History.ClearAll),
		unary("SetPrivateMode", SetPrivateModeMethod, History.SetPrivateMode),
		unary("Session", SessionMethod, History.Session),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "clipmini/v1/history.json",
}

// RegisterHistoryServer registers srv with s.
func RegisterHistoryServer(s grpc.ServiceRegistrar, srv HistoryServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Resp any](name, fullMethod string, call func(History, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(History), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(History), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(message.WatchRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(HistoryServer).Watch(in, &watchStream{stream})
}
