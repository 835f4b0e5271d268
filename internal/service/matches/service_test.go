package matches_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oggyb/spotme/internal/api"
	"github.com/oggyb/spotme/internal/app"
	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/events"
	"github.com/oggyb/spotme/internal/repository"
	"github.com/oggyb/spotme/internal/service/matches"
	"github.com/oggyb/spotme/internal/session"
	"github.com/oggyb/spotme/internal/testutil"
)

type fixture struct {
	app   *app.AppContext
	svc   *matches.Service
	ana   context.Context
	ben   context.Context
	cy    context.Context
	anaP  db.Profile
	benP  db.Profile
	match db.Match
}

func setup(t *testing.T) *fixture {
	t.Helper()
	a := testutil.NewApp(t)
	f := &fixture{app: a, svc: matches.NewMatchesService(a)}

	f.ana, _ = testutil.SignUp(t, a, "ana@example.com")
	f.ben, _ = testutil.SignUp(t, a, "ben@example.com")
	f.cy, _ = testutil.SignUp(t, a, "cy@example.com")
	f.anaP = testutil.Onboard(t, f.ana, "Ana", 29)
	f.benP = testutil.Onboard(t, f.ben, "Ben", 31)
	testutil.Onboard(t, f.cy, "Cy", 40)

	m, created, err := repository.NewMatchRepository(a.DB).CreateMatch(context.Background(), f.anaP, f.benP)
	require.NoError(t, err)
	require.True(t, created)
	f.match = m
	return f
}

func TestListMatches(t *testing.T) {
	f := setup(t)

	resp, err := f.svc.ListMatches(f.ana, &api.Empty{})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, f.benP.ID, resp.Matches[0].OtherUserID)
	assert.Equal(t, "Ben", resp.Matches[0].Name)

	resp, err = f.svc.ListMatches(f.ben, &api.Empty{})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, f.anaP.ID, resp.Matches[0].OtherUserID)

	resp, err = f.svc.ListMatches(f.cy, &api.Empty{})
	require.NoError(t, err)
	assert.Empty(t, resp.Matches)
}

func TestSendAndListMessages(t *testing.T) {
	f := setup(t)

	sub, err := f.app.Events.Subscribe(context.Background(), f.benP.ID)
	require.NoError(t, err)
	defer sub.Close()

	msg, err := f.svc.SendMessage(f.ana, &api.SendMessageRequest{MatchID: f.match.ID, Body: "  leg day?  "})
	require.NoError(t, err)
	assert.Equal(t, "leg day?", msg.Body)
	assert.Equal(t, f.anaP.ID, msg.SenderID)

	select {
	case ev := <-sub.C:
		assert.Equal(t, events.KindMessageCreated, ev.Kind)
		require.NotNil(t, ev.Message)
		assert.Equal(t, msg.ID, ev.Message.MessageID)
	case <-time.After(2 * time.Second):
		t.Fatal("no message event")
	}

	time.Sleep(5 * time.Millisecond)
	_, err = f.svc.SendMessage(f.ben, &api.SendMessageRequest{MatchID: f.match.ID, Body: "always"})
	require.NoError(t, err)

	page, err := f.svc.ListMessages(f.ben, &api.ListMessagesRequest{MatchID: f.match.ID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "leg day?", page.Messages[0].Body)
	require.NotNil(t, page.NextPageToken)

	page, err = f.svc.ListMessages(f.ben, &api.ListMessagesRequest{MatchID: f.match.ID, PageToken: page.NextPageToken})
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "always", page.Messages[0].Body)
	assert.Nil(t, page.NextPageToken)
}

func TestMessages_Rejected(t *testing.T) {
	f := setup(t)

	_, err := f.svc.SendMessage(f.ana, &api.SendMessageRequest{MatchID: f.match.ID, Body: "   "})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.svc.SendMessage(f.cy, &api.SendMessageRequest{MatchID: f.match.ID, Body: "hi"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = f.svc.ListMessages(f.cy, &api.ListMessagesRequest{MatchID: f.match.ID})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = f.svc.SendMessage(f.ana, &api.SendMessageRequest{MatchID: "missing", Body: "hi"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = f.svc.ListMatches(context.Background(), &api.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

type eventStream struct {
	grpc.ServerStream
	ctx  context.Context
	sent chan events.Event
}

func (s *eventStream) Context() context.Context { return s.ctx }

func (s *eventStream) Send(ev *events.Event) error {
	s.sent <- *ev
	return nil
}

func TestSubscribe_EndsOnSignOut(t *testing.T) {
	f := setup(t)
	sess, err := session.Current(f.ana)
	require.NoError(t, err)
	id := sess.Store.Identity()
	require.NotNil(t, id)

	stream := &eventStream{ctx: f.ana, sent: make(chan events.Event, 8)}
	done := make(chan error, 1)
	go func() { done <- f.svc.Subscribe(&api.SubscribeRequest{}, stream) }()

	require.NoError(t, f.app.Identity.SignOut(context.Background(), id))

	select {
	case err := <-done:
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	case <-time.After(2 * time.Second):
		t.Fatal("stream still open after sign-out")
	}
}
