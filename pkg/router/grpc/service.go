package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "dialog.router.RouterService"

// Server is the service interface a grpc.Server registers against;
// Handler (server.go) is the sole implementation.
type Server interface {
	ArchiveGet(context.Context, *archiveGetRequest) (*archiveGetResponse, error)
	ArchivePut(context.Context, *archivePutRequest) (*archivePutResponse, error)
	MemoryResolve(context.Context, *memoryResolveRequest) (*memoryResolveResponse, error)
	MemoryPublish(context.Context, *memoryPublishRequest) (*memoryPublishResponse, error)
}

// RegisterServer registers srv against s under the fixed service name,
// the hand-maintained equivalent of a protoc-gen-go-grpc
// RegisterXServer function.
func RegisterServer(s *grpc.Server, srv Server) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ArchiveGet", Handler: archiveGetHandler},
		{MethodName: "ArchivePut", Handler: archivePutHandler},
		{MethodName: "MemoryResolve", Handler: memoryResolveHandler},
		{MethodName: "MemoryPublish", Handler: memoryPublishHandler},
	},
	Metadata: "pkg/router/grpc/service.go",
}

func archiveGetHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(archiveGetRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).ArchiveGet(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ArchiveGet")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Server).ArchiveGet(ctx, req.(*archiveGetRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func archivePutHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(archivePutRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).ArchivePut(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ArchivePut")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Server).ArchivePut(ctx, req.(*archivePutRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func memoryResolveHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(memoryResolveRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).MemoryResolve(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("MemoryResolve")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Server).MemoryResolve(ctx, req.(*memoryResolveRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func memoryPublishHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(memoryPublishRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).MemoryPublish(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("MemoryPublish")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Server).MemoryPublish(ctx, req.(*memoryPublishRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func fullMethod(method string) string {
	return "/" + serviceName + "/" + method
}
