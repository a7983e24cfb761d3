package grpc

import "google.golang.org/grpc"

// NewServer builds a *grpc.Server with handler registered as the
// RouterService implementation, ready for srv.Serve(listener).
func NewServer(handler *Handler, opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)
	RegisterServer(s, handler)
	return s
}
