package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/identity"
	"github.com/oggyb/spotme/internal/logger"
	"github.com/oggyb/spotme/internal/session"
	"github.com/oggyb/spotme/internal/session/mocks"
)

var (
	defaults = session.Defaults{SwipeCredits: 5, SuperCredits: 1}
	ana      = &identity.Identity{UserID: "ana", Email: "ana@example.com", SessionID: "s1"}
)

func ptr[T any](v T) *T { return &v }

func TestOnIdentityChange_LoadsStoredProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileStore(ctrl)

	stored := &db.Profile{ID: "ana", Name: "Ana", Onboarded: true, SwipeCredits: 3}
	profiles.EXPECT().GetProfile(gomock.Any(), "ana").Return(stored, nil)

	s := session.NewStore(profiles, defaults, logger.Discard())
	s.OnIdentityChange(context.Background(), ana)

	p, ok := s.Profile()
	require.True(t, ok)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, 3, p.SwipeCredits)

	onboarded, err := s.Onboarded()
	require.NoError(t, err)
	assert.Equal(t, "ana", onboarded.ID)
}

func TestOnIdentityChange_SynthesizesMissingProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileStore(ctrl)
	profiles.EXPECT().GetProfile(gomock.Any(), "ana").Return(nil, gorm.ErrRecordNotFound)

	day := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	s := session.NewStore(profiles, defaults, logger.Discard()).WithClock(func() time.Time { return day })
	s.OnIdentityChange(context.Background(), ana)

	p, ok := s.Profile()
	require.True(t, ok)
	assert.False(t, p.Onboarded)
	assert.Equal(t, db.PlanFree, p.PlanTier)
	assert.Equal(t, 5, p.SwipeCredits)
	assert.Equal(t, 1, p.SuperCredits)
	assert.Equal(t, "2026-03-01", p.CreditsResetOn)

	_, err := s.Onboarded()
	assert.ErrorIs(t, err, session.ErrOnboardingRequired)
}

func TestOnIdentityChange_LoadFailureForcesOnboarding(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileStore(ctrl)
	profiles.EXPECT().GetProfile(gomock.Any(), "ana").Return(nil, errors.New("connection refused"))

	s := session.NewStore(profiles, defaults, logger.Discard())
	s.OnIdentityChange(context.Background(), ana)

	_, ok := s.Profile()
	assert.False(t, ok)
	assert.Equal(t, ana, s.Identity())

	_, err := s.Onboarded()
	assert.ErrorIs(t, err, session.ErrOnboardingRequired)
}

func TestOnIdentityChange_NilClears(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileStore(ctrl)
	profiles.EXPECT().GetProfile(gomock.Any(), "ana").Return(&db.Profile{ID: "ana"}, nil)

	s := session.NewStore(profiles, defaults, logger.Discard())
	s.OnIdentityChange(context.Background(), ana)
	s.OnIdentityChange(context.Background(), nil)

	assert.Nil(t, s.Identity())
	_, ok := s.Profile()
	assert.False(t, ok)

	_, err := s.Onboarded()
	assert.ErrorIs(t, err, session.ErrNotSignedIn)
}

func TestUpdateProfile_CommitsRemoteRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileStore(ctrl)
	profiles.EXPECT().GetProfile(gomock.Any(), "ana").Return(nil, gorm.ErrRecordNotFound)

	profiles.EXPECT().
		UpsertProfile(gomock.Any(), gomock.Any(), []string{"name", "age", "onboarded"}).
		DoAndReturn(func(_ context.Context, p db.Profile, _ []string) (*db.Profile, error) {
			assert.Equal(t, "Ana", p.Name)
			assert.Equal(t, 30, p.Age)
			p.SwipeCredits = 4 // remote state wins
			return &p, nil
		})

	s := session.NewStore(profiles, defaults, logger.Discard())
	s.OnIdentityChange(context.Background(), ana)

	got, err := s.UpdateProfile(context.Background(), session.ProfileUpdate{
		Name:      ptr("Ana"),
		Age:       ptr(30),
		Onboarded: ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, got.SwipeCredits)

	local, _ := s.Profile()
	assert.Equal(t, got, local)
}

func TestUpdateProfile_FailureLeavesLocalState(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileStore(ctrl)
	profiles.EXPECT().GetProfile(gomock.Any(), "ana").Return(&db.Profile{ID: "ana", Name: "Ana"}, nil)
	profiles.EXPECT().UpsertProfile(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

	s := session.NewStore(profiles, defaults, logger.Discard())
	s.OnIdentityChange(context.Background(), ana)

	_, err := s.UpdateProfile(context.Background(), session.ProfileUpdate{Name: ptr("Changed")})
	require.Error(t, err)

	local, _ := s.Profile()
	assert.Equal(t, "Ana", local.Name)
}

func TestUpdateProfile_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileStore(ctrl)
	profiles.EXPECT().GetProfile(gomock.Any(), "ana").Return(&db.Profile{ID: "ana"}, nil)

	s := session.NewStore(profiles, defaults, logger.Discard())
	s.OnIdentityChange(context.Background(), ana)

	tests := []struct {
		name string
		u    session.ProfileUpdate
	}{
		{"underage", session.ProfileUpdate{Age: ptr(17)}},
		{"unknown intent", session.ProfileUpdate{Intent: ptr(db.Intent("friends"))}},
		{"too many tags", session.ProfileUpdate{Tags: ptr([]string{"a", "b", "c", "d", "e", "f"})}},
		{"latitude out of range", session.ProfileUpdate{Latitude: ptr(91.0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpdateProfile(context.Background(), tt.u)
			assert.ErrorIs(t, err, session.ErrInvalidUpdate)
		})
	}
}

func TestUpdateProfile_SignedOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := session.NewStore(mocks.NewMockProfileStore(ctrl), defaults, logger.Discard())

	_, err := s.UpdateProfile(context.Background(), session.ProfileUpdate{Name: ptr("x")})
	assert.ErrorIs(t, err, session.ErrNotSignedIn)
}

func TestReplace_IgnoresOtherUsers(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileStore(ctrl)
	profiles.EXPECT().GetProfile(gomock.Any(), "ana").Return(&db.Profile{ID: "ana", SwipeCredits: 5}, nil)

	s := session.NewStore(profiles, defaults, logger.Discard())
	s.OnIdentityChange(context.Background(), ana)

	s.Replace(db.Profile{ID: "bo", SwipeCredits: 1})
	p, _ := s.Profile()
	assert.Equal(t, 5, p.SwipeCredits)

	s.Replace(db.Profile{ID: "ana", SwipeCredits: 2})
	p, _ = s.Profile()
	assert.Equal(t, 2, p.SwipeCredits)
}
