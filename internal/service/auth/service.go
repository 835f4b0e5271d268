package auth

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/oggyb/spotme/internal/api"
	"github.com/oggyb/spotme/internal/app"
	svcErr "github.com/oggyb/spotme/internal/errors"
	"github.com/oggyb/spotme/internal/identity"
	"github.com/oggyb/spotme/internal/session"
)

var validate = validator.New()

// Service implements spotme.Auth on top of the identity service. Sessions
// are opened and closed by the identity listener registered in the app
// context, not here.
type Service struct {
	appCtx *app.AppContext
}

func NewAuthService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

// SignUp creates the account and returns a token for the new session.
func (s *Service) SignUp(ctx context.Context, req *api.SignUpRequest) (*api.AuthResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}

	id, token, err := s.appCtx.Identity.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		s.appCtx.Logger.Debug("SignUp failed", "email", req.Email, "err", err)
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Info("account created", "user", id.UserID)
	return response(id, token), nil
}

// SignIn checks the credentials and opens a new session.
func (s *Service) SignIn(ctx context.Context, req *api.SignInRequest) (*api.AuthResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}

	id, token, err := s.appCtx.Identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		s.appCtx.Logger.Debug("SignIn failed", "email", req.Email, "err", err)
		return nil, svcErr.Map(err)
	}
	return response(id, token), nil
}

// SignOut revokes the caller's token.
func (s *Service) SignOut(ctx context.Context, _ *api.Empty) (*api.Empty, error) {
	sess, err := session.Current(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if err := s.appCtx.Identity.SignOut(ctx, sess.Store.Identity()); err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.Empty{}, nil
}

func response(id *identity.Identity, token string) *api.AuthResponse {
	return &api.AuthResponse{Token: token, UserID: id.UserID, Email: id.Email}
}
