// Package swipe resolves a swipe on the head of a session's feed into a pass,
// a one-sided like or a match.
package swipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/entitlement"
	"github.com/oggyb/spotme/internal/events"
	"github.com/oggyb/spotme/internal/feed"
	"github.com/oggyb/spotme/internal/logger"
	"github.com/oggyb/spotme/internal/repository"
	"github.com/oggyb/spotme/internal/session"
)

var (
	ErrRetryable        = errors.New("write failed, retry the swipe")
	ErrFeedNotLoaded    = errors.New("feed not loaded")
	ErrFeedExhausted    = errors.New("no more candidates")
	ErrInvalidDirection = errors.New("direction must be left, right or super")
)

type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
	Super Direction = "super"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Left, Right, Super:
		return d, nil
	}
	return "", ErrInvalidDirection
}

type Result string

const (
	Passed  Result = "passed"
	Liked   Result = "liked"
	Matched Result = "matched"
)

// Outcome is the committed result of one swipe.
type Outcome struct {
	Direction Direction
	Result    Result
	Candidate feed.Candidate
	// Match is set when Result is Matched.
	Match *db.Match
	// Profile is the swiping user's profile after the swipe.
	Profile   db.Profile
	Remaining int
}

// Store is the storage side of a swipe.
type Store interface {
	GetProfile(ctx context.Context, id string) (*db.Profile, error)
	RecordLike(ctx context.Context, like db.Like, charge repository.Charge) (repository.LikeResult, error)
	HasLiked(ctx context.Context, likerID, targetID string) (bool, error)
	CreateMatch(ctx context.Context, x, y db.Profile) (db.Match, bool, error)
}

// LikeCounter keeps cached like counts fresh.
type LikeCounter interface {
	IncrLikeCount(ctx context.Context, userID string) error
}

type Resolver struct {
	store   Store
	gate    *entitlement.Gate
	events  events.Publisher
	counter LikeCounter
	log     *slog.Logger
}

func NewResolver(store Store, gate *entitlement.Gate, pub events.Publisher, counter LikeCounter, log *slog.Logger) *Resolver {
	return &Resolver{store: store, gate: gate, events: pub, counter: counter, log: log}
}

// Swipe decides on the current head of the session feed.
//
// The feed only advances once the outcome is committed. A denied like returns
// entitlement.ErrUpgradeRequired and keeps the candidate at the head; a failed
// write returns ErrRetryable and leaves the session untouched.
func (r *Resolver) Swipe(ctx context.Context, s *session.Session, dir Direction) (Outcome, error) {
	s.Lock()
	defer s.Unlock()

	me, err := s.Store.Onboarded()
	if err != nil {
		return Outcome{}, err
	}
	if s.Feed == nil {
		return Outcome{}, ErrFeedNotLoaded
	}
	cand, ok := s.Feed.Current()
	if !ok {
		return Outcome{}, ErrFeedExhausted
	}

	switch dir {
	case Left:
		s.Feed.Advance()
		return Outcome{
			Direction: dir,
			Result:    Passed,
			Candidate: cand,
			Profile:   me,
			Remaining: s.Feed.Remaining(),
		}, nil
	case Right, Super:
	default:
		return Outcome{}, ErrInvalidDirection
	}

	me, err = r.gate.RefreshCredits(ctx, s.Store)
	if err != nil {
		return Outcome{}, retryable(err)
	}

	charge, allowed := pricing(me, dir)
	if !allowed {
		// this session's copy may predate an upgrade made elsewhere
		if me, err = r.gate.Reload(ctx, s.Store); err != nil {
			return Outcome{}, retryable(err)
		}
		charge, allowed = pricing(me, dir)
	}
	if !allowed {
		// a like that already landed is a retry and costs nothing
		liked, err := r.store.HasLiked(ctx, me.ID, cand.ID)
		if err != nil {
			return Outcome{}, retryable(err)
		}
		if !liked {
			return Outcome{}, entitlement.ErrUpgradeRequired
		}
	}

	res, err := r.store.RecordLike(ctx, db.Like{
		LikerID:  me.ID,
		TargetID: cand.ID,
		Super:    dir == Super,
	}, charge)
	if errors.Is(err, repository.ErrNoCredits) {
		// credits were spent by another session; resync before denying
		if _, rerr := r.gate.Reload(ctx, s.Store); rerr != nil {
			logger.FromContext(ctx, r.log).Warn("profile reload failed", "user", me.ID, "err", rerr)
		}
		return Outcome{}, entitlement.ErrUpgradeRequired
	}
	if err != nil {
		return Outcome{}, retryable(err)
	}

	log := logger.FromContext(ctx, r.log)
	if res.Created && !cand.Placeholder {
		if err := r.counter.IncrLikeCount(ctx, cand.ID); err != nil {
			log.Warn("like count cache update failed", "user", cand.ID, "err", err)
		}
	}

	out := Outcome{Direction: dir, Result: Liked, Candidate: cand, Profile: res.Profile}

	if !cand.Placeholder {
		mutual, err := r.store.HasLiked(ctx, cand.ID, me.ID)
		if err != nil {
			return Outcome{}, retryable(err)
		}
		if mutual {
			// the feed copy of the candidate can be stale by now
			other, err := r.store.GetProfile(ctx, cand.ID)
			if err != nil {
				return Outcome{}, retryable(err)
			}
			match, created, err := r.store.CreateMatch(ctx, res.Profile, *other)
			if err != nil {
				return Outcome{}, retryable(err)
			}
			if created {
				r.announce(ctx, match)
			}
			out.Result = Matched
			out.Match = &match
		}
	}

	s.Store.Replace(res.Profile)
	s.Feed.Advance()
	out.Remaining = s.Feed.Remaining()

	log.Debug("swipe resolved",
		"session", s.ID,
		"candidate", cand.ID,
		"direction", dir,
		"result", out.Result,
		"credits", res.Profile.SwipeCredits,
	)
	return out, nil
}

// pricing picks what a like costs and whether me can afford it.
func pricing(me db.Profile, dir Direction) (repository.Charge, bool) {
	if dir == Super {
		return repository.ChargeSuper, entitlement.CanSuperSwipe(me)
	}
	if me.IsGold() {
		return repository.ChargeNone, true
	}
	return repository.ChargeSwipe, entitlement.CanSwipeRight(me)
}

func (r *Resolver) announce(ctx context.Context, m db.Match) {
	evs := make([]events.Event, 0, 2)
	for _, uid := range []string{m.UserAID, m.UserBID} {
		otherID, snap := m.Other(uid)
		evs = append(evs, events.Event{
			Kind:   events.KindMatchCreated,
			UserID: uid,
			Match: &events.MatchPayload{
				MatchID:     m.ID,
				OtherUserID: otherID,
				Name:        snap.Name,
				PhotoURL:    snap.PhotoURL,
				Emoji:       snap.Emoji,
			},
		})
	}
	if err := events.PublishAll(ctx, r.events, evs...); err != nil {
		logger.FromContext(ctx, r.log).Warn("match event not delivered", "match", m.ID, "err", err)
	}
}

func retryable(err error) error {
	known := []error{session.ErrOnboardingRequired, session.ErrNotSignedIn, context.Canceled, context.DeadlineExceeded}
	for _, k := range known {
		if errors.Is(err, k) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrRetryable, err)
}
