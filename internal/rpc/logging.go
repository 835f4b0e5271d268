package rpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/oggyb/spotme/internal/logger"
)

// Logging logs every call with its status code and latency, and hands the
// handler a logger tagged with the method name.
func Logging(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		ctx = logger.IntoContext(ctx, log.With("method", info.FullMethod))
		resp, err := handler(ctx, req)

		code := status.Code(err)
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		log.Log(ctx, level, "rpc",
			"method", info.FullMethod,
			"code", code.String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}

// StreamLogging logs the end of every stream.
func StreamLogging(log *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		log.Debug("stream closed",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return err
	}
}
