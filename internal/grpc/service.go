package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "titulky.v1.SubtitleService"

// GetSubtitlesFullMethod is the full method name of GetSubtitles.
const GetSubtitlesFullMethod = "/" + ServiceName + "/GetSubtitles"

// SubtitleServiceServer is the server API of the subtitle service. Messages
// are google.protobuf.Struct values:
//
//	request:  {"type": "movie", "id": "tt0133093"}
//	response: {"subtitles": [{"id": "...", "url": "...", "lang": "cze"}]}
type SubtitleServiceServer interface {
	GetSubtitles(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes SubtitleService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SubtitleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetSubtitles",
			Handler:    getSubtitlesHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "titulky/v1/subtitles.proto",
}

func getSubtitlesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SubtitleServiceServer).GetSubtitles(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetSubtitlesFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SubtitleServiceServer).GetSubtitles(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterSubtitleServiceServer registers srv on s.
func RegisterSubtitleServiceServer(s grpc.ServiceRegistrar, srv SubtitleServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// InvokeGetSubtitles calls GetSubtitles over conn.
func InvokeGetSubtitles(ctx context.Context, conn grpc.ClientConnInterface, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, GetSubtitlesFullMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
