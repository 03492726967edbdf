package grpc

import (
	"context"
	"fmt"
	"sync"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/titulkysubs/titulkysubs/internal/config"
	"github.com/titulkysubs/titulkysubs/internal/reporting"
)

var (
	grpcServerMetrics         *grpcprom.ServerMetrics
	registerServerMetricsOnce sync.Once
)

// NewGRPCServer creates a fully configured gRPC server with Prometheus metrics,
// panic recovery, health checking, and reflection.
func NewGRPCServer(service SubtitleService) *grpc.Server {
	registerServerMetricsOnce.Do(func() {
		grpcServerMetrics = grpcprom.NewServerMetrics(
			grpcprom.WithServerHandlingTimeHistogram(),
		)
		prometheus.MustRegister(grpcServerMetrics)
	})

	srvMetrics := grpcServerMetrics

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(srvMetrics.UnaryServerInterceptor(), recoveryInterceptor),
		grpc.ChainStreamInterceptor(srvMetrics.StreamServerInterceptor()),
	)

	RegisterSubtitleServiceServer(grpcServer, NewServer(service))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	// Reflection lets grpcurl list the service
	reflection.Register(grpcServer)

	srvMetrics.InitializeMetrics(grpcServer)

	return grpcServer
}

// recoveryInterceptor turns handler panics into codes.Internal.
func recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger := config.GetLogger()
			logger.Error().Str("panic", fmt.Sprint(r)).Str("method", info.FullMethod).Msg("Recovered from gRPC handler panic")
			reporting.CapturePanic(r, map[string]string{"method": info.FullMethod})
			err = status.Error(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}
