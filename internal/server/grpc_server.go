package server

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/oggyb/spotme/internal/api"
	"github.com/oggyb/spotme/internal/app"
	"github.com/oggyb/spotme/internal/rpc"
)

// maxRecvMsgSize leaves room for a base64-encoded photo upload.
const maxRecvMsgSize = 10 << 20

// NewGRPCServer builds the gRPC server with the interceptor chain and
// registers all provided services plus health and reflection.
func NewGRPCServer(appCtx *app.AppContext, registrars ...Registrar) (*grpc.Server, *health.Server) {
	auth := rpc.NewAuth(appCtx.Identity, appCtx.Sessions, api.ServicePrefix, api.PublicMethods...)
	limiter := rpc.NewRateLimiter(appCtx.Config.RateLimit.RPS, appCtx.Config.RateLimit.Burst)

	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxRecvMsgSize),
		grpc.ChainUnaryInterceptor(
			rpc.Logging(appCtx.Logger),
			auth.Unary(),
			limiter.Unary(),
		),
		grpc.ChainStreamInterceptor(
			rpc.StreamLogging(appCtx.Logger),
			auth.Stream(),
		),
	)

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	for name := range grpcServer.GetServiceInfo() {
		healthServer.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	// enable reflection for easier debugging with grpcurl
	reflection.Register(grpcServer)

	return grpcServer, healthServer
}

// ServeGRPC listens on the configured address and serves until ctx is done,
// then stops gracefully.
func ServeGRPC(ctx context.Context, addr string, grpcServer *grpc.Server, healthServer *health.Server) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		healthServer.Shutdown()
		grpcServer.GracefulStop()
	}()

	return grpcServer.Serve(lis)
}
