package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oggyb/spotme/internal/api"
	"github.com/oggyb/spotme/internal/service/auth"
	"github.com/oggyb/spotme/internal/session"
	"github.com/oggyb/spotme/internal/testutil"
)

func TestSignUpSignInSignOut(t *testing.T) {
	ctx := context.Background()
	appCtx := testutil.NewApp(t)
	svc := auth.NewAuthService(appCtx)

	resp, err := svc.SignUp(ctx, &api.SignUpRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, 1, appCtx.Sessions.Len())

	_, err = svc.SignUp(ctx, &api.SignUpRequest{Email: "ana@example.com", Password: "secret1"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = svc.SignIn(ctx, &api.SignInRequest{Email: "ana@example.com", Password: "nope"})
	require.Error(t, err)
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Unauthenticated, st.Code())
	assert.Equal(t, "wrong password", st.Message())

	in, err := svc.SignIn(ctx, &api.SignInRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, in.UserID)
	assert.Equal(t, 2, appCtx.Sessions.Len())

	id, err := appCtx.Identity.Verify(ctx, in.Token)
	require.NoError(t, err)
	sess, ok := appCtx.Sessions.Get(id.SessionID)
	require.True(t, ok)

	_, err = svc.SignOut(session.NewContext(ctx, sess), &api.Empty{})
	require.NoError(t, err)
	assert.Equal(t, 1, appCtx.Sessions.Len())

	_, err = appCtx.Identity.Verify(ctx, in.Token)
	assert.Error(t, err)
}

func TestSignUp_Validation(t *testing.T) {
	svc := auth.NewAuthService(testutil.NewApp(t))

	_, err := svc.SignUp(context.Background(), &api.SignUpRequest{Email: "not-an-email", Password: "secret1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.SignUp(context.Background(), &api.SignUpRequest{Email: "a@b.co", Password: "123"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestSignOut_RequiresSession(t *testing.T) {
	svc := auth.NewAuthService(testutil.NewApp(t))
	_, err := svc.SignOut(context.Background(), &api.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
