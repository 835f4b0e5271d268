package server_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/oggyb/spotme/internal/api"
	"github.com/oggyb/spotme/internal/app"
	"github.com/oggyb/spotme/internal/events"
	"github.com/oggyb/spotme/internal/rpc"
	"github.com/oggyb/spotme/internal/server"
	"github.com/oggyb/spotme/internal/service/auth"
	"github.com/oggyb/spotme/internal/service/discover"
	"github.com/oggyb/spotme/internal/service/matches"
	"github.com/oggyb/spotme/internal/service/profile"
	"github.com/oggyb/spotme/internal/testutil"
)

type clients struct {
	conn     *grpc.ClientConn
	auth     *api.AuthClient
	profile  *api.ProfileClient
	discover *api.DiscoverClient
	matches  *api.MatchesClient
}

func startServer(t *testing.T, appCtx *app.AppContext) *clients {
	t.Helper()

	srv, _ := server.NewGRPCServer(appCtx,
		auth.NewRegistrar(appCtx),
		profile.NewRegistrar(appCtx),
		discover.NewRegistrar(appCtx),
		matches.NewRegistrar(appCtx),
	)
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &clients{
		conn:     conn,
		auth:     api.NewAuthClient(conn),
		profile:  api.NewProfileClient(conn),
		discover: api.NewDiscoverClient(conn),
		matches:  api.NewMatchesClient(conn),
	}
}

// signUp creates and onboards a user over the wire and returns an
// authenticated context.
func signUp(t *testing.T, c *clients, email, name string) (context.Context, string) {
	t.Helper()
	resp, err := c.auth.SignUp(context.Background(), &api.SignUpRequest{Email: email, Password: "password1"})
	require.NoError(t, err)

	ctx := rpc.WithToken(context.Background(), resp.Token)
	_, err = c.profile.CompleteOnboarding(ctx, &api.OnboardRequest{
		Name:   name,
		Age:    30,
		Intent: "any",
		Emoji:  "🔥",
	})
	require.NoError(t, err)
	return ctx, resp.UserID
}

func TestGRPC_RequiresToken(t *testing.T) {
	c := startServer(t, testutil.NewApp(t))

	_, err := c.profile.GetProfile(context.Background(), &api.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = c.profile.GetProfile(rpc.WithToken(context.Background(), "garbage"), &api.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestGRPC_Health(t *testing.T) {
	c := startServer(t, testutil.NewApp(t))

	resp, err := healthpb.NewHealthClient(c.conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: api.DiscoverService})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestGRPC_MatchAndChat(t *testing.T) {
	c := startServer(t, testutil.NewApp(t))

	anaCtx, anaID := signUp(t, c, "ana@example.com", "Ana")
	benCtx, benID := signUp(t, c, "ben@example.com", "Ben")

	streamCtx, cancel := context.WithCancel(anaCtx)
	defer cancel()
	stream, err := c.matches.Subscribe(streamCtx, &api.SubscribeRequest{})
	require.NoError(t, err)
	received := make(chan *events.Event, 4)
	go func() {
		for {
			ev, err := stream.Recv()
			if err != nil {
				close(received)
				return
			}
			received <- ev
		}
	}()

	// Give the server time to open the subscription before anything is
	// published on it.
	time.Sleep(100 * time.Millisecond)

	feed, err := c.discover.LoadFeed(anaCtx, &api.LoadFeedRequest{})
	require.NoError(t, err)
	require.NotNil(t, feed.Current)
	assert.Equal(t, benID, feed.Current.ID)
	out, err := c.discover.Swipe(anaCtx, &api.SwipeRequest{Direction: "right"})
	require.NoError(t, err)
	assert.Equal(t, "liked", out.Result)

	_, err = c.discover.LoadFeed(benCtx, &api.LoadFeedRequest{})
	require.NoError(t, err)
	out, err = c.discover.Swipe(benCtx, &api.SwipeRequest{Direction: "right"})
	require.NoError(t, err)
	require.Equal(t, "matched", out.Result)
	require.NotNil(t, out.Match)

	select {
	case ev, ok := <-received:
		require.True(t, ok)
		assert.Equal(t, events.KindMatchCreated, ev.Kind)
		require.NotNil(t, ev.Match)
		assert.Equal(t, out.Match.ID, ev.Match.MatchID)
	case <-time.After(3 * time.Second):
		t.Fatal("no match event")
	}

	_, err = c.matches.SendMessage(benCtx, &api.SendMessageRequest{MatchID: out.Match.ID, Body: "hey"})
	require.NoError(t, err)

	select {
	case ev, ok := <-received:
		require.True(t, ok)
		assert.Equal(t, events.KindMessageCreated, ev.Kind)
		require.NotNil(t, ev.Message)
		assert.Equal(t, benID, ev.Message.SenderID)
	case <-time.After(3 * time.Second):
		t.Fatal("no message event")
	}

	list, err := c.matches.ListMatches(anaCtx, &api.Empty{})
	require.NoError(t, err)
	require.Len(t, list.Matches, 1)
	assert.Equal(t, benID, list.Matches[0].OtherUserID)

	me, err := c.profile.GetProfile(anaCtx, &api.Empty{})
	require.NoError(t, err)
	assert.Equal(t, anaID, me.ID)
	assert.Equal(t, 4, me.SwipeCredits)
}

func TestGRPC_SignOutRevokesToken(t *testing.T) {
	c := startServer(t, testutil.NewApp(t))
	ctx, _ := signUp(t, c, "ana@example.com", "Ana")

	_, err := c.auth.SignOut(ctx, &api.Empty{})
	require.NoError(t, err)

	_, err = c.profile.GetProfile(ctx, &api.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
