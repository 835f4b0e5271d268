package feed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/feed"
)

type stubSource struct {
	profiles []db.Profile
	err      error
	got      feed.Query
}

func (s *stubSource) ListCandidates(_ context.Context, q feed.Query) ([]db.Profile, error) {
	s.got = q
	return s.profiles, s.err
}

func loc(lat, lng float64) (*float64, *float64) { return &lat, &lng }

func profile(id string) db.Profile {
	return db.Profile{ID: id, Name: id, Onboarded: true, PlanTier: db.PlanFree}
}

func TestLoad_PassesQueryAndKeepsOrder(t *testing.T) {
	src := &stubSource{profiles: []db.Profile{profile("b"), profile("c")}}
	me := profile("a")

	fd, err := feed.Load(context.Background(), src, me, feed.Filters{Intent: db.IntentCoach, AgeMin: 20, AgeMax: 30})
	require.NoError(t, err)

	assert.Equal(t, "a", src.got.ExcludeID)
	assert.Equal(t, db.IntentCoach, src.got.Intent)
	assert.Equal(t, 20, src.got.AgeMin)
	assert.False(t, fd.IsFallback())
	assert.Equal(t, 2, fd.Size())

	c, ok := fd.Current()
	require.True(t, ok)
	assert.Equal(t, "b", c.ID)
}

func TestLoad_EmptyResultUsesFallback(t *testing.T) {
	fd, err := feed.Load(context.Background(), &stubSource{}, profile("a"), feed.Filters{})
	require.NoError(t, err)

	assert.True(t, fd.IsFallback())
	assert.Greater(t, fd.Size(), 0)
	c, ok := fd.Current()
	require.True(t, ok)
	assert.True(t, c.Placeholder)
	assert.True(t, feed.IsPlaceholder(c.ID))
}

func TestLoad_SourceError(t *testing.T) {
	_, err := feed.Load(context.Background(), &stubSource{err: errors.New("boom")}, profile("a"), feed.Filters{})
	assert.Error(t, err)
}

func TestLoad_SkipsSelfAndNotOnboarded(t *testing.T) {
	pending := profile("p")
	pending.Onboarded = false
	src := &stubSource{profiles: []db.Profile{profile("a"), pending, profile("b")}}

	fd, err := feed.Load(context.Background(), src, profile("a"), feed.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 1, fd.Size())
}

func TestLoad_DistanceFilterGoldOnly(t *testing.T) {
	near := profile("near")
	near.Latitude, near.Longitude = loc(51.51, -0.12)
	far := profile("far")
	far.Latitude, far.Longitude = loc(48.85, 2.35) // Paris
	src := &stubSource{profiles: []db.Profile{near, far}}

	me := profile("me")
	me.Latitude, me.Longitude = loc(51.50, -0.12)

	// free: distance filter is not applied
	fd, err := feed.Load(context.Background(), src, me, feed.Filters{MaxDistanceKm: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, fd.Size())

	me.PlanTier = db.PlanGold
	fd, err = feed.Load(context.Background(), src, me, feed.Filters{MaxDistanceKm: 10})
	require.NoError(t, err)
	require.Equal(t, 1, fd.Size())
	c, _ := fd.Current()
	assert.Equal(t, "near", c.ID)
	require.NotNil(t, c.DistanceKm)
	assert.Less(t, *c.DistanceKm, 2.0)
}

func TestAdvanceUntilExhausted(t *testing.T) {
	fd := feed.New([]feed.Candidate{{Profile: profile("x")}, {Profile: profile("y")}})

	assert.Equal(t, 2, fd.Remaining())
	assert.True(t, fd.Advance())
	c, ok := fd.Current()
	require.True(t, ok)
	assert.Equal(t, "y", c.ID)

	assert.True(t, fd.Advance())
	assert.True(t, fd.Exhausted())
	assert.False(t, fd.Advance())
	_, ok = fd.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, fd.Remaining())
}

func TestHaversine(t *testing.T) {
	// London -> Paris is roughly 344 km
	d := feed.Haversine(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 344, d, 5)
}

func TestUpcoming(t *testing.T) {
	fd := feed.New([]feed.Candidate{{Profile: profile("x")}, {Profile: profile("y")}, {Profile: profile("z")}})
	fd.Advance()

	got := fd.Upcoming(5)
	require.Len(t, got, 2)
	assert.Equal(t, "y", got[0].ID)
	assert.Equal(t, "z", got[1].ID)

	assert.Len(t, fd.Upcoming(1), 1)
	assert.Nil(t, fd.Upcoming(0))

	var empty *feed.Feed
	assert.Nil(t, empty.Upcoming(3))
}
