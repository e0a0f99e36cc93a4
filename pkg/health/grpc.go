package health

import (
	"context"

	"airdrop-ledger/pkg/errutil"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCServer answers grpc.health.v1 checks from the same dependency pings as
// the HTTP readiness probe.
type GRPCServer struct {
	grpc_health_v1.UnimplementedHealthServer

	health HealthService
}

func NewGRPCServer(h HealthService) *GRPCServer {
	return &GRPCServer{health: h}
}

func RegisterGRPC(server *grpc.Server, h HealthService) {
	grpc_health_v1.RegisterHealthServer(server, NewGRPCServer(h))
}

// Check reports the overall server status. Only the empty service name is
// known.
func (s *GRPCServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if req.GetService() != "" {
		return nil, errutil.NotFound("unknown service", nil, errutil.WithReason("SERVICE_NOT_FOUND"))
	}
	if s.health.Check(ctx).Status != StatusHealthy {
		return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}, nil
}

func (s *GRPCServer) Watch(req *grpc_health_v1.HealthCheckRequest, srv grpc_health_v1.Health_WatchServer) error {
	return errutil.New(errutil.StatusNotImplemented, "watch is not supported")
}
