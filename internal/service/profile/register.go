package profile

import (
	"google.golang.org/grpc"

	"github.com/oggyb/spotme/internal/api"
	"github.com/oggyb/spotme/internal/app"
)

// Registrar ties the Profile service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Profile service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Profile service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	api.RegisterProfileServer(s, NewProfileService(r.appCtx))
}
