package grpc

// proto.go defines the FraudPipelineService server interface and service
// descriptor by hand. Messages are plain Go structs carried by the JSON codec
// registered in codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "fraudwatch.v1.FraudPipelineService"

// FraudPipelineServiceServer is the server API for FraudPipelineService.
type FraudPipelineServiceServer interface {
	ProcessBatch(context.Context, *ProcessBatchRequest) (*ProcessBatchResponse, error)
	ListFlagged(context.Context, *ListFlaggedRequest) (*ListFlaggedResponse, error)
	ListLogs(context.Context, *ListLogsRequest) (*ListLogsResponse, error)
	GetStatistics(context.Context, *GetStatisticsRequest) (*GetStatisticsResponse, error)
	GetGeoDistribution(context.Context, *GetGeoDistributionRequest) (*GetGeoDistributionResponse, error)
	ClearAll(context.Context, *ClearAllRequest) (*ClearAllResponse, error)
	mustEmbedUnimplementedFraudPipelineServiceServer()
}

// UnimplementedFraudPipelineServiceServer provides forward-compatible default implementations.
type UnimplementedFraudPipelineServiceServer struct{}

func (UnimplementedFraudPipelineServiceServer) ProcessBatch(context.Context, *ProcessBatchRequest) (*ProcessBatchResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ProcessBatch not implemented")
}
func (UnimplementedFraudPipelineServiceServer) ListFlagged(context.Context, *ListFlaggedRequest) (*ListFlaggedResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListFlagged not implemented")
}
func (UnimplementedFraudPipelineServiceServer) ListLogs(context.Context, *ListLogsRequest) (*ListLogsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListLogs not implemented")
}
func (UnimplementedFraudPipelineServiceServer) GetStatistics(context.Context, *GetStatisticsRequest) (*GetStatisticsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetStatistics not implemented")
}
func (UnimplementedFraudPipelineServiceServer) GetGeoDistribution(context.Context, *GetGeoDistributionRequest) (*GetGeoDistributionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetGeoDistribution not implemented")
}
func (UnimplementedFraudPipelineServiceServer) ClearAll(context.Context, *ClearAllRequest) (*ClearAllResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ClearAll not implemented")
}
func (UnimplementedFraudPipelineServiceServer) mustEmbedUnimplementedFraudPipelineServiceServer() {}

// RegisterFraudPipelineServiceServer registers the server with a gRPC server.
func RegisterFraudPipelineServiceServer(s grpclib.ServiceRegistrar, srv FraudPipelineServiceServer) {
	s.RegisterService(&fraudPipelineServiceDesc, srv)
}

var fraudPipelineServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FraudPipelineServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "ProcessBatch", Handler: processBatchHandler},
		{MethodName: "ListFlagged", Handler: listFlaggedHandler},
		{MethodName: "ListLogs", Handler: listLogsHandler},
		{MethodName: "GetStatistics", Handler: getStatisticsHandler},
		{MethodName: "GetGeoDistribution", Handler: getGeoDistributionHandler},
		{MethodName: "ClearAll", Handler: clearAllHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "fraudwatch/v1/fraud_pipeline.proto",
}

// unary adapts a typed method to the descriptor handler signature and runs
// it through the server interceptor chain.
func unary[Req any, Resp any](
	method string,
	call func(FraudPipelineServiceServer, context.Context, *Req) (*Resp, error),
) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	fullMethod := FullMethod(method)
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FraudPipelineServiceServer), ctx, req)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(FraudPipelineServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, req, info, handler)
	}
}

var (
	processBatchHandler       = unary("ProcessBatch", FraudPipelineServiceServer.ProcessBatch)
	listFlaggedHandler        = unary("ListFlagged", FraudPipelineServiceServer.ListFlagged)
	listLogsHandler           = unary("ListLogs", FraudPipelineServiceServer.ListLogs)
	getStatisticsHandler      = unary("GetStatistics", FraudPipelineServiceServer.GetStatistics)
	getGeoDistributionHandler = unary("GetGeoDistribution", FraudPipelineServiceServer.GetGeoDistribution)
	clearAllHandler           = unary("ClearAll", FraudPipelineServiceServer.ClearAll)
)

// FullMethod returns the full method path used by clients.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}
