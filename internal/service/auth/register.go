package auth

import (
	"google.golang.org/grpc"

	"github.com/oggyb/spotme/internal/api"
	"github.com/oggyb/spotme/internal/app"
)

// Registrar ties the Auth service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Auth service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Auth service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	api.RegisterAuthServer(s, NewAuthService(r.appCtx))
}
