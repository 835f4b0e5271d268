package server

import "google.golang.org/grpc"

// Registrar attaches one application service to the gRPC server. Each
// package under internal/service provides one.
type Registrar interface {
	Register(s *grpc.Server)
}
