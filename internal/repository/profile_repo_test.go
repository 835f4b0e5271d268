package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/feed"
	"github.com/oggyb/spotme/internal/repository"
	"github.com/oggyb/spotme/internal/testutil"
)

func TestUpsertProfile(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)
	repo := repository.NewProfileRepository(database)

	fresh := testutil.Profile("ana", 5)
	fresh.Onboarded = false
	stored, err := repo.UpsertProfile(ctx, fresh, []string{"name"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", stored.Name)
	assert.Equal(t, 5, stored.SwipeCredits)

	// credits changed remotely must survive a profile edit
	require.NoError(t, database.Model(&db.Profile{}).Where("id = ?", "ana").Update("swipe_credits", 2).Error)

	edit := *stored
	edit.Name = "Ana B"
	edit.Tags = []string{"Yoga", "HIIT"}
	edit.Onboarded = true
	edit.SwipeCredits = 5
	stored, err = repo.UpsertProfile(ctx, edit, []string{"name", "tags", "onboarded"})
	require.NoError(t, err)
	assert.Equal(t, "Ana B", stored.Name)
	assert.Equal(t, []string{"Yoga", "HIIT"}, stored.Tags)
	assert.True(t, stored.Onboarded)
	assert.Equal(t, 2, stored.SwipeCredits)
}

func TestUpgradeAndReset(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)
	p := testutil.Profile("ana", 0)
	p.CreditsResetOn = "2026-01-01"
	testutil.Insert(t, database, p)
	repo := repository.NewProfileRepository(database)

	got, reset, err := repo.ResetDailyCredits(ctx, "ana", "2026-01-02", 5, 1)
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Equal(t, 5, got.SwipeCredits)

	_, reset, err = repo.ResetDailyCredits(ctx, "ana", "2026-01-02", 5, 1)
	require.NoError(t, err)
	assert.False(t, reset, "second reset on the same day is a no-op")

	got, err = repo.UpgradeToGold(ctx, "ana", 99999, 5)
	require.NoError(t, err)
	assert.Equal(t, db.PlanGold, got.PlanTier)
	assert.Equal(t, 6, got.SuperCredits)

	got, err = repo.UpgradeToGold(ctx, "ana", 99999, 5)
	require.NoError(t, err)
	assert.Equal(t, 6, got.SuperCredits, "a second upgrade grants no further bonus")

	_, reset, err = repo.ResetDailyCredits(ctx, "ana", "2026-02-01", 5, 1)
	require.NoError(t, err)
	assert.False(t, reset, "gold profiles are never reset")

	_, err = repo.UpgradeToGold(ctx, "nobody", 99999, 5)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListCandidates(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)

	coach := testutil.Profile("coach", 5)
	coach.Intent = db.IntentCoach
	coach.Age = 40
	partner := testutil.Profile("partner", 5)
	partner.Intent = db.IntentPartner
	partner.Age = 22
	pending := testutil.Profile("pending", 5)
	pending.Onboarded = false
	liked := testutil.Profile("liked", 5)

	testutil.Insert(t, database, testutil.Profile("me", 5), coach, partner, pending, liked)
	require.NoError(t, database.Create(&db.Like{LikerID: "me", TargetID: "liked"}).Error)

	repo := repository.NewProfileRepository(database)

	ids := func(q feed.Query) []string {
		t.Helper()
		ps, err := repo.ListCandidates(ctx, q)
		require.NoError(t, err)
		out := []string{}
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"coach", "partner"}, ids(feed.Query{ExcludeID: "me"}))
	assert.ElementsMatch(t, []string{"coach", "partner"}, ids(feed.Query{ExcludeID: "me", Intent: db.IntentAny}))
	assert.Equal(t, []string{"coach"}, ids(feed.Query{ExcludeID: "me", Intent: db.IntentCoach}))
	assert.Equal(t, []string{"partner"}, ids(feed.Query{ExcludeID: "me", AgeMax: 30}))
	assert.Equal(t, []string{"coach"}, ids(feed.Query{ExcludeID: "me", AgeMin: 30, AgeMax: 45}))
	assert.Len(t, ids(feed.Query{ExcludeID: "me", Limit: 1}), 1)
}

func TestGetProfiles(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)
	testutil.Insert(t, database, testutil.Profile("a", 5), testutil.Profile("b", 5))
	repo := repository.NewProfileRepository(database)

	got, err := repo.GetProfiles(ctx, []string{"a", "b", "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "B", got["b"].Name)

	_, err = repo.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
