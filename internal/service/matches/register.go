package matches

import (
	"google.golang.org/grpc"

	"github.com/oggyb/spotme/internal/api"
	"github.com/oggyb/spotme/internal/app"
)

// Registrar ties the Matches service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Matches service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Matches service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	api.RegisterMatchesServer(s, NewMatchesService(r.appCtx))
}
