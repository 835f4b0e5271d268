package matches

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc"

	"github.com/oggyb/spotme/internal/api"
	"github.com/oggyb/spotme/internal/app"
	"github.com/oggyb/spotme/internal/db"
	svcErr "github.com/oggyb/spotme/internal/errors"
	"github.com/oggyb/spotme/internal/events"
	"github.com/oggyb/spotme/internal/identity"
	"github.com/oggyb/spotme/internal/logger"
	"github.com/oggyb/spotme/internal/repository"
	"github.com/oggyb/spotme/internal/session"
	"github.com/oggyb/spotme/internal/utils/pagination"
)

const (
	defaultMessagesPage = 50
	maxMessagesPage     = 100
)

var validate = validator.New()

// Service implements spotme.Matches: the match list, conversations and the
// realtime event stream.
type Service struct {
	appCtx      *app.AppContext
	matchRepo   *repository.MatchRepository
	messageRepo *repository.MessageRepository
}

func NewMatchesService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		messageRepo: repository.NewMessageRepository(appCtx.DB),
	}
}

// ListMatches returns the caller's matches, newest first, each with the
// other participant's snapshot.
func (s *Service) ListMatches(ctx context.Context, _ *api.Empty) (*api.ListMatchesResponse, error) {
	uid, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.ListMatches(ctx, uid)
	if err != nil {
		logger.FromContext(ctx, s.appCtx.Logger).Error("ListMatches failed", "user", uid, "err", err)
		return nil, svcErr.Map(err)
	}

	resp := &api.ListMatchesResponse{Matches: make([]api.MatchView, 0, len(matches))}
	for _, m := range matches {
		resp.Matches = append(resp.Matches, api.NewMatchView(m, uid))
	}
	return resp, nil
}

// SendMessage appends a message to a match and pushes it to the other side.
//
// Behavior:
//   - The caller must take part in the match.
//   - The body is trimmed and must not be empty.
//   - Delivery of the push is best effort; the stored message is the truth.
func (s *Service) SendMessage(ctx context.Context, req *api.SendMessageRequest) (*api.MessageView, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, svcErr.InvalidArgument("message must not be empty")
	}

	uid, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	match, err := s.participantMatch(ctx, req.MatchID, uid)
	if err != nil {
		return nil, err
	}

	msg := &db.Message{MatchID: match.ID, SenderID: uid, Body: body}
	if err := s.messageRepo.AppendMessage(ctx, msg); err != nil {
		return nil, svcErr.Map(err)
	}

	otherID, _ := match.Other(uid)
	err = s.appCtx.Events.Publish(ctx, events.Event{
		Kind:   events.KindMessageCreated,
		UserID: otherID,
		Message: &events.MessagePayload{
			MessageID: msg.ID,
			MatchID:   msg.MatchID,
			SenderID:  msg.SenderID,
			Body:      msg.Body,
			CreatedAt: msg.CreatedAt,
		},
	})
	if err != nil {
		logger.FromContext(ctx, s.appCtx.Logger).Warn("message event not delivered", "match", match.ID, "err", err)
	}

	v := api.NewMessageView(*msg)
	return &v, nil
}

// ListMessages returns a conversation oldest first, cursor-paginated.
func (s *Service) ListMessages(ctx context.Context, req *api.ListMessagesRequest) (*api.ListMessagesResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	uid, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.participantMatch(ctx, req.MatchID, uid); err != nil {
		return nil, err
	}

	limit := pagination.ClampLimit(req.Limit, defaultMessagesPage, maxMessagesPage)
	msgs, next, err := s.messageRepo.ListMessages(ctx, req.MatchID, req.PageToken, limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &api.ListMessagesResponse{Messages: make([]api.MessageView, 0, len(msgs)), NextPageToken: next}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, api.NewMessageView(m))
	}
	return resp, nil
}

// Subscribe streams the caller's realtime events until the client leaves or
// the session is signed out.
func (s *Service) Subscribe(_ *api.SubscribeRequest, stream grpc.ServerStreamingServer[events.Event]) error {
	ctx := stream.Context()
	sess, err := session.Current(ctx)
	if err != nil {
		return svcErr.Map(err)
	}
	uid, err := callerID(ctx)
	if err != nil {
		return err
	}

	sub, err := s.appCtx.Events.Subscribe(ctx, uid)
	if err != nil {
		return svcErr.Map(err)
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sess.Done():
			return svcErr.Map(identity.ErrInvalidToken)
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			if err := stream.Send(&ev); err != nil {
				return err
			}
		}
	}
}

func (s *Service) participantMatch(ctx context.Context, matchID, uid string) (*db.Match, error) {
	match, err := s.matchRepo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !match.Has(uid) {
		return nil, svcErr.PermissionDenied("not a participant of this match")
	}
	return match, nil
}

func callerID(ctx context.Context) (string, error) {
	sess, err := session.Current(ctx)
	if err != nil {
		return "", svcErr.Map(err)
	}
	id := sess.Store.Identity()
	if id == nil {
		return "", svcErr.Map(session.ErrNotSignedIn)
	}
	return id.UserID, nil
}
