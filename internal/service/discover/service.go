package discover

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/oggyb/spotme/internal/api"
	"github.com/oggyb/spotme/internal/app"
	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/entitlement"
	svcErr "github.com/oggyb/spotme/internal/errors"
	"github.com/oggyb/spotme/internal/feed"
	"github.com/oggyb/spotme/internal/logger"
	"github.com/oggyb/spotme/internal/repository"
	"github.com/oggyb/spotme/internal/session"
	"github.com/oggyb/spotme/internal/swipe"
	"github.com/oggyb/spotme/internal/utils/pagination"
)

const (
	defaultLikesPage = 20
	maxLikesPage     = 100
	upcomingPreview  = 5
)

var validate = validator.New()

// Service implements spotme.Discover: the candidate feed, swiping and the
// "who liked me" views.
type Service struct {
	appCtx      *app.AppContext
	profileRepo *repository.ProfileRepository
	likeRepo    *repository.LikeRepository
}

// NewDiscoverService creates a new Discover service with dependencies from AppContext.
// Dependencies include:
//   - DB connection (via ProfileRepository and LikeRepository)
//   - RedisCache for the like counters
//   - the swipe resolver and entitlement gate
func NewDiscoverService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		likeRepo:    repository.NewLikeRepository(appCtx.DB),
	}
}

// LoadFeed snapshots a new candidate feed into the caller's session.
//
// Behavior:
//   - Intent and age filters apply to every tier.
//   - The distance filter is Gold-only; free users get PermissionDenied.
//   - A failed fetch is not an error: the fallback feed is served instead.
//
// Example:
//
//	svc.LoadFeed(ctx, &api.LoadFeedRequest{Intent: "partner", AgeMax: 35})
func (s *Service) LoadFeed(ctx context.Context, req *api.LoadFeedRequest) (*api.FeedResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	sess, err := session.Current(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	sess.Lock()
	defer sess.Unlock()

	me, err := sess.Store.Onboarded()
	if err != nil {
		return nil, svcErr.Map(err)
	}

	filters := feed.Filters{
		AgeMin:        req.AgeMin,
		AgeMax:        req.AgeMax,
		MaxDistanceKm: req.MaxDistanceKm,
	}
	if req.Intent != "" {
		filters.Intent = db.ParseIntent(req.Intent)
	}
	if filters.MaxDistanceKm > 0 {
		// rechecks the stored plan when the local copy says free
		me, err = s.appCtx.Gate.Require(ctx, sess.Store, entitlement.CanUseLocationFilter)
		if err != nil {
			return nil, svcErr.Map(err)
		}
	}

	f, err := feed.Load(ctx, s.profileRepo, me, filters)
	if err != nil {
		logger.FromContext(ctx, s.appCtx.Logger).Warn("feed load failed, serving fallback", "user", me.ID, "err", err)
		f = feed.Fallback()
	}
	sess.Feed = f

	logger.FromContext(ctx, s.appCtx.Logger).Debug("feed loaded", "user", me.ID, "size", f.Size(), "fallback", f.IsFallback())
	return feedResponse(f), nil
}

// Swipe resolves a swipe on the current head of the caller's feed.
func (s *Service) Swipe(ctx context.Context, req *api.SwipeRequest) (*api.SwipeResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	dir, err := swipe.ParseDirection(req.Direction)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	sess, err := session.Current(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	out, err := s.appCtx.Swipes.Swipe(ctx, sess, dir)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &api.SwipeResponse{
		Result:       string(out.Result),
		Candidate:    api.NewCandidateView(out.Candidate),
		Remaining:    out.Remaining,
		SwipeCredits: out.Profile.SwipeCredits,
		SuperCredits: out.Profile.SuperCredits,
	}
	if out.Match != nil {
		mv := api.NewMatchView(*out.Match, out.Profile.ID)
		resp.Match = &mv
	}

	sess.Lock()
	if next, ok := sess.Feed.Current(); ok {
		v := api.NewCandidateView(next)
		resp.Next = &v
	}
	sess.Unlock()

	return resp, nil
}

// ListLikes returns the people who liked the caller, newest first. Gold only.
//
// Behavior:
//   - OnlyNew hides likers the caller already liked back.
//   - Supports cursor-based pagination with PageToken.
func (s *Service) ListLikes(ctx context.Context, req *api.ListLikesRequest) (*api.ListLikesResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	sess, err := session.Current(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	sess.Lock()
	me, err := s.appCtx.Gate.Require(ctx, sess.Store, entitlement.CanViewWhoLikedMe)
	sess.Unlock()
	if err != nil {
		return nil, svcErr.Map(err)
	}

	limit := pagination.ClampLimit(req.Limit, defaultLikesPage, maxLikesPage)
	likes, nextToken, err := s.likeRepo.GetLikers(ctx, me.ID, req.PageToken, limit, req.OnlyNew)
	if err != nil {
		logger.FromContext(ctx, s.appCtx.Logger).Error("GetLikers failed", "err", err)
		return nil, svcErr.Map(err)
	}

	ids := make([]string, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, l.LikerID)
	}
	profiles, err := s.profileRepo.GetProfiles(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &api.ListLikesResponse{Likers: make([]api.LikerView, 0, len(likes)), NextPageToken: nextToken}
	for _, l := range likes {
		p := profiles[l.LikerID]
		resp.Likers = append(resp.Likers, api.LikerView{
			UserID:   l.LikerID,
			Name:     p.Name,
			Emoji:    p.Emoji,
			PhotoURL: p.PhotoURL,
			Super:    l.Super,
			LikedAt:  l.CreatedAt.UnixMilli(),
		})
	}
	return resp, nil
}

// CountLikes returns how many users liked the caller. Every tier may see it.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:userID).
//  2. On a miss, falls back to DB via repository.CountLikers.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) CountLikes(ctx context.Context, _ *api.Empty) (*api.CountLikesResponse, error) {
	sess, err := session.Current(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	uid := sess.Store.Identity().UserID

	if n, ok, err := s.appCtx.RedisCache.GetLikeCount(ctx, uid); err == nil && ok {
		return &api.CountLikesResponse{Count: uint64(n)}, nil
	}

	count, err := s.likeRepo.CountLikers(ctx, uid)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if err := s.appCtx.RedisCache.UpdateLikeCount(ctx, uid, count); err != nil {
		logger.FromContext(ctx, s.appCtx.Logger).Warn("like count cache write failed", "user", uid, "err", err)
	}
	return &api.CountLikesResponse{Count: uint64(count)}, nil
}

func feedResponse(f *feed.Feed) *api.FeedResponse {
	resp := &api.FeedResponse{Remaining: f.Remaining(), Fallback: f.IsFallback()}
	upcoming := f.Upcoming(upcomingPreview + 1)
	if len(upcoming) > 0 {
		cur := api.NewCandidateView(upcoming[0])
		resp.Current = &cur
	}
	for _, c := range upcoming[min(1, len(upcoming)):] {
		resp.Upcoming = append(resp.Upcoming, api.NewCandidateView(c))
	}
	return resp
}
