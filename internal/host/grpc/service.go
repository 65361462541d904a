package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

const serviceName = "babylon.host.v1.Querier"

// QueryEnvelope carries one serialized hostapi.QueryRequest.
type QueryEnvelope struct {
	Request hostapi.Binary `json:"request"`
}

// QuerierServer is the server-side interface of the querier service.
type QuerierServer interface {
	RawQuery(context.Context, *QueryEnvelope) (*hostapi.SystemResult, error)
}

// RegisterQuerierServer registers srv on a gRPC server.
func RegisterQuerierServer(s grpc.ServiceRegistrar, srv QuerierServer) {
	s.RegisterService(&serviceDesc, srv)
}

func handlerRawQuery(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(QueryEnvelope)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QuerierServer).RawQuery(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("RawQuery")}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(QuerierServer).RawQuery(ctx, req.(*QueryEnvelope))
	}
	return interceptor(ctx, req, info, handler)
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*QuerierServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RawQuery", Handler: handlerRawQuery},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "babylon/host/v1/querier.json",
}
