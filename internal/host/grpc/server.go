package grpc

import (
	"context"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
)

// correlationHeader carries the caller's correlation ID across the wire.
const correlationHeader = "x-correlation-id"

var _ QuerierServer = (*Server)(nil)

// Server exposes a hostapi.Querier as the querier service.
type Server struct {
	querier hostapi.Querier
	logger  *slog.Logger
}

func NewServer(querier hostapi.Querier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{querier: querier, logger: logger}
}

// RawQuery answers one envelope. Host failures travel inside the result,
// never as a gRPC status.
func (s *Server) RawQuery(ctx context.Context, req *QueryEnvelope) (*hostapi.SystemResult, error) {
	res := s.querier.RawQuery(ctx, req.Request)
	return &res, nil
}

// Register adds the querier service to gs.
func (s *Server) Register(gs *grpc.Server) {
	RegisterQuerierServer(gs, s)
}

// NewGRPCServer builds a grpc.Server with the correlation interceptor
// installed and s registered.
func (s *Server) NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.correlate))
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener, opts ...grpc.ServerOption) error {
	gs := s.NewGRPCServer(opts...)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		gs.GracefulStop()
	}()

	s.logger.Info("querier service listening", "addr", lis.Addr().String())
	err := gs.Serve(lis)
	if ctx.Err() != nil {
		<-stopped
		return nil
	}
	gs.Stop()
	return err
}

func (s *Server) correlate(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var parent string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(correlationHeader); len(ids) > 0 {
			parent = ids[0]
		}
	}
	ctx = observability.NewRequestContext(ctx, parent)

	resp, err := handler(ctx, req)
	s.logger.DebugContext(ctx, "rpc handled", "method", info.FullMethod, "error", err)
	return resp, err
}
