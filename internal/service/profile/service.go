package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oggyb/spotme/internal/api"
	"github.com/oggyb/spotme/internal/app"
	"github.com/oggyb/spotme/internal/blob"
	"github.com/oggyb/spotme/internal/db"
	svcErr "github.com/oggyb/spotme/internal/errors"
	"github.com/oggyb/spotme/internal/session"
)

var validate = validator.New()

// Service implements spotme.Profile. Every write goes through the caller's
// session store so the local profile only changes after the remote write.
type Service struct {
	appCtx *app.AppContext
}

func NewProfileService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

// GetProfile returns the caller's profile, onboarded or not.
func (s *Service) GetProfile(ctx context.Context, _ *api.Empty) (*api.ProfileView, error) {
	sess, err := session.Current(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	p, ok := sess.Store.Profile()
	if !ok {
		return nil, svcErr.Map(session.ErrOnboardingRequired)
	}
	return api.NewProfileView(p), nil
}

// CompleteOnboarding fills in the profile card and marks it onboarded.
//
// Behavior:
//   - Age must be at least 18, at most 5 tags.
//   - Intent accepts partner, relationship, coach or any.
//   - Credits are not touched; a new profile keeps its free-tier defaults.
func (s *Service) CompleteOnboarding(ctx context.Context, req *api.OnboardRequest) (*api.ProfileView, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	intent, err := parseIntent(req.Intent)
	if err != nil {
		return nil, err
	}

	onboarded := true
	tags := cleanTags(req.Tags)
	return s.update(ctx, session.ProfileUpdate{
		Name:      ptr(strings.TrimSpace(req.Name)),
		Age:       &req.Age,
		Gym:       ptr(strings.TrimSpace(req.Gym)),
		Intent:    &intent,
		Bio:       ptr(strings.TrimSpace(req.Bio)),
		Tags:      &tags,
		Emoji:     &req.Emoji,
		GuestPass: &req.GuestPass,
		Onboarded: &onboarded,
	})
}

// UpdateProfile applies a partial edit.
func (s *Service) UpdateProfile(ctx context.Context, req *api.UpdateProfileRequest) (*api.ProfileView, error) {
	u := session.ProfileUpdate{
		Name:      req.Name,
		Age:       req.Age,
		Gym:       req.Gym,
		Bio:       req.Bio,
		Emoji:     req.Emoji,
		GuestPass: req.GuestPass,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if req.Intent != nil {
		intent, err := parseIntent(*req.Intent)
		if err != nil {
			return nil, err
		}
		u.Intent = &intent
	}
	if req.Tags != nil {
		tags := cleanTags(*req.Tags)
		u.Tags = &tags
	}
	if u.Empty() {
		return nil, svcErr.InvalidArgument("nothing to update")
	}
	return s.update(ctx, u)
}

// UploadPhoto stores the image under profiles/<uid>/ and points the profile
// at it.
func (s *Service) UploadPhoto(ctx context.Context, req *api.UploadPhotoRequest) (*api.ProfileView, error) {
	if err := validate.Struct(req); err != nil {
		return nil, svcErr.Map(err)
	}
	if len(req.Data) > blob.MaxPhotoBytes {
		return nil, svcErr.InvalidArgument(fmt.Sprintf("photo larger than %d bytes", blob.MaxPhotoBytes))
	}

	sess, err := session.Current(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	uid := sess.Store.Identity().UserID

	key, err := blob.PhotoKey(uid, req.ContentType)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	url, err := s.appCtx.Blob.Put(ctx, key, req.ContentType, req.Data)
	if err != nil {
		s.appCtx.Logger.Error("photo upload failed", "user", uid, "key", key, "err", err)
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Debug("photo stored", "user", uid, "key", key, "bytes", len(req.Data))

	return s.update(ctx, session.ProfileUpdate{PhotoURL: &url})
}

// Upgrade moves the caller to Gold.
func (s *Service) Upgrade(ctx context.Context, _ *api.Empty) (*api.ProfileView, error) {
	sess, err := session.Current(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	sess.Lock()
	defer sess.Unlock()

	p, err := s.appCtx.Gate.Upgrade(ctx, sess.Store)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return api.NewProfileView(p), nil
}

func (s *Service) update(ctx context.Context, u session.ProfileUpdate) (*api.ProfileView, error) {
	sess, err := session.Current(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	sess.Lock()
	defer sess.Unlock()

	p, err := sess.Store.UpdateProfile(ctx, u)
	if err != nil {
		s.appCtx.Logger.Warn("profile update failed", "session", sess.ID, "err", err)
		return nil, svcErr.Map(err)
	}
	return api.NewProfileView(p), nil
}

func parseIntent(s string) (db.Intent, error) {
	intent := db.ParseIntent(s)
	if intent == db.IntentAny && !strings.EqualFold(strings.TrimSpace(s), string(db.IntentAny)) {
		return "", svcErr.InvalidArgument("intent must be partner, relationship, coach or any")
	}
	return intent, nil
}

// cleanTags trims tags and drops empty and duplicate ones.
func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
