// Package session keeps the signed-in identity and profile of one client
// session and serializes the operations that act on it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/identity"
)

//go:generate mockgen -destination=mocks/profile_store.go -package=mocks . ProfileStore

var (
	ErrNotSignedIn        = errors.New("not signed in")
	ErrOnboardingRequired = errors.New("onboarding required")
)

// ProfileStore is the remote profile collection.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*db.Profile, error)
	UpsertProfile(ctx context.Context, p db.Profile, columns []string) (*db.Profile, error)
}

// Defaults are the credits a brand-new profile starts with.
type Defaults struct {
	SwipeCredits int
	SuperCredits int
}

var validate = validator.New()

// Store is the single source of truth for one session's identity and profile.
// A nil profile with a present identity means the profile could not be loaded
// and the user has to go through onboarding.
type Store struct {
	profiles ProfileStore
	defaults Defaults
	log      *slog.Logger
	now      func() time.Time

	mu       sync.RWMutex
	identity *identity.Identity
	profile  *db.Profile
}

func NewStore(profiles ProfileStore, defaults Defaults, log *slog.Logger) *Store {
	return &Store{
		profiles: profiles,
		defaults: defaults,
		log:      log,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for new profiles. Tests only.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// OnIdentityChange loads the profile of a new identity, or clears everything
// on sign-out.
func (s *Store) OnIdentityChange(ctx context.Context, id *identity.Identity) {
	if id == nil {
		s.mu.Lock()
		s.identity, s.profile = nil, nil
		s.mu.Unlock()
		return
	}

	var profile *db.Profile
	stored, err := s.profiles.GetProfile(ctx, id.UserID)
	switch {
	case err == nil:
		profile = stored
	case errors.Is(err, gorm.ErrRecordNotFound):
		fresh := s.newProfile(id)
		profile = &fresh
	default:
		s.log.Warn("profile load failed, onboarding forced", "user", id.UserID, "err", err)
	}

	s.mu.Lock()
	s.identity, s.profile = id, profile
	s.mu.Unlock()
}

// Identity returns the current identity, nil when signed out.
func (s *Store) Identity() *identity.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Profile returns a copy of the local profile.
func (s *Store) Profile() (db.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return db.Profile{}, false
	}
	return *s.profile, true
}

// Onboarded returns the profile of a signed-in user who finished onboarding.
func (s *Store) Onboarded() (db.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return db.Profile{}, ErrNotSignedIn
	}
	if s.profile == nil || !s.profile.Onboarded {
		return db.Profile{}, ErrOnboardingRequired
	}
	return *s.profile, nil
}

// Replace commits an authoritative remote record locally. Records of another
// user are ignored.
func (s *Store) Replace(p db.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil || s.identity.UserID != p.ID {
		return
	}
	s.profile = &p
}

// UpdateProfile merges u into the remote profile and then adopts the stored
// record. On failure the local profile is left as it was.
func (s *Store) UpdateProfile(ctx context.Context, u ProfileUpdate) (db.Profile, error) {
	if err := validate.Struct(u); err != nil {
		return db.Profile{}, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}

	s.mu.RLock()
	id := s.identity
	var base db.Profile
	if s.profile != nil {
		base = *s.profile
	}
	s.mu.RUnlock()

	if id == nil {
		return db.Profile{}, ErrNotSignedIn
	}
	if base.ID == "" {
		base = s.newProfile(id)
	}

	columns := u.Apply(&base)
	stored, err := s.profiles.UpsertProfile(ctx, base, columns)
	if err != nil {
		return db.Profile{}, err
	}

	s.Replace(*stored)
	return *stored, nil
}

func (s *Store) newProfile(id *identity.Identity) db.Profile {
	return db.Profile{
		ID:             id.UserID,
		Email:          id.Email,
		Intent:         db.IntentAny,
		PlanTier:       db.PlanFree,
		SwipeCredits:   s.defaults.SwipeCredits,
		SuperCredits:   s.defaults.SuperCredits,
		CreditsResetOn: s.now().UTC().Format(time.DateOnly),
	}
}
