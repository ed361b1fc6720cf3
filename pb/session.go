// Package pb describes the gRPC session service and converts engine state to
// and from its wire messages. The service only uses well-known protobuf types
// so no generated code is needed: commands travel as StringValue and
// snapshots as Struct.
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName    = "neontetris.SessionService"
	PlayMethodName = "/" + ServiceName + "/Play"
)

type (
	PlayServer = grpc.BidiStreamingServer[wrapperspb.StringValue, structpb.Struct]
	PlayClient = grpc.BidiStreamingClient[wrapperspb.StringValue, structpb.Struct]
)

// SessionServiceServer is the server API for the session service.
// Implementations should embed UnimplementedSessionServiceServer.
type SessionServiceServer interface {
	// Play hosts a game for the lifetime of the stream. Every received
	// message is a command, every sent message a snapshot.
	Play(PlayServer) error
	mustEmbedUnimplementedSessionServiceServer()
}

type UnimplementedSessionServiceServer struct{}

func (UnimplementedSessionServiceServer) Play(PlayServer) error {
	return status.Errorf(codes.Unimplemented, "method Play not implemented")
}
func (UnimplementedSessionServiceServer) mustEmbedUnimplementedSessionServiceServer() {}

func RegisterSessionServiceServer(s grpc.ServiceRegistrar, srv SessionServiceServer) {
	s.RegisterService(&SessionService_ServiceDesc, srv)
}

func playHandler(srv any, stream grpc.ServerStream) error {
	return srv.(SessionServiceServer).Play(&grpc.GenericServerStream[wrapperspb.StringValue, structpb.Struct]{ServerStream: stream})
}

var SessionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionServiceServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Play",
			Handler:       playHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "neontetris/session.proto",
}

// SessionServiceClient is the client API for the session service.
type SessionServiceClient interface {
	Play(ctx context.Context, opts ...grpc.CallOption) (PlayClient, error)
}

type sessionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSessionServiceClient(cc grpc.ClientConnInterface) SessionServiceClient {
	return &sessionServiceClient{cc}
}

func (c *sessionServiceClient) Play(ctx context.Context, opts ...grpc.CallOption) (PlayClient, error) {
	stream, err := c.cc.NewStream(ctx, &SessionService_ServiceDesc.Streams[0], PlayMethodName, opts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[wrapperspb.StringValue, structpb.Struct]{ClientStream: stream}, nil
}
