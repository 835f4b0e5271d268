package rpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	svcErr "github.com/oggyb/spotme/internal/errors"
	"github.com/oggyb/spotme/internal/identity"
	"github.com/oggyb/spotme/internal/logger"
	"github.com/oggyb/spotme/internal/session"
)

const authorizationKey = "authorization"

// Verifier checks a bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*identity.Identity, error)
}

// Sessions resolves the live session of a verified identity.
type Sessions interface {
	Resolve(ctx context.Context, id *identity.Identity) (*session.Session, error)
}

// Auth attaches the caller's session to the context of every application
// call. Methods in public skip the check, as does anything outside the
// application services (health, reflection).
type Auth struct {
	verifier Verifier
	sessions Sessions
	public   map[string]bool
	prefix   string
}

func NewAuth(v Verifier, s Sessions, servicePrefix string, public ...string) *Auth {
	a := &Auth{verifier: v, sessions: s, public: make(map[string]bool), prefix: servicePrefix}
	for _, m := range public {
		a.public[m] = true
	}
	return a
}

func (a *Auth) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := a.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

func (a *Auth) Stream() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := a.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &contextStream{ServerStream: ss, ctx: ctx})
	}
}

func (a *Auth) authenticate(ctx context.Context, method string) (context.Context, error) {
	if a.public[method] || !strings.HasPrefix(method, a.prefix) {
		return ctx, nil
	}

	token := BearerToken(ctx)
	if token == "" {
		return nil, svcErr.Map(identity.ErrInvalidToken)
	}
	id, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	ctx = logger.IntoContext(ctx, logger.FromContext(ctx, nil).With("user", id.UserID))
	sess, err := a.sessions.Resolve(ctx, id)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return session.NewContext(ctx, sess), nil
}

// BearerToken reads "authorization: Bearer <token>" from incoming metadata.
func BearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get(authorizationKey) {
		if token, ok := strings.CutPrefix(v, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// WithToken adds the bearer token to an outgoing call.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, authorizationKey, "Bearer "+token)
}

type contextStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *contextStream) Context() context.Context { return s.ctx }
