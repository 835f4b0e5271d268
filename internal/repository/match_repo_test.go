package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/repository"
	"github.com/oggyb/spotme/internal/testutil"
)

func TestCreateMatch_Idempotent(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)
	repo := repository.NewMatchRepository(database)

	a, b := testutil.Profile("a", 5), testutil.Profile("b", 5)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = map[string]bool{}
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(flip bool) {
			defer wg.Done()
			x, y := a, b
			if flip {
				x, y = b, a
			}
			m, ok, err := repo.CreateMatch(ctx, x, y)
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				created++
			}
			ids[m.ID] = true
		}(i%2 == 1)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1)

	n, err := repo.CountMatches(ctx, "b", "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCreateMatch_OrdersParticipants(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)
	repo := repository.NewMatchRepository(database)

	z, a := testutil.Profile("zed", 5), testutil.Profile("amy", 5)
	m, created, err := repo.CreateMatch(ctx, z, a)
	require.NoError(t, err)
	require.True(t, created)

	assert.Equal(t, "amy", m.UserAID)
	assert.Equal(t, "Amy", m.UserA.Name)
	assert.Equal(t, "Zed", m.UserB.Name)
	assert.Equal(t, "amy:zed", m.PairKey)

	other, snap := m.Other("amy")
	assert.Equal(t, "zed", other)
	assert.Equal(t, "Zed", snap.Name)
	assert.True(t, m.Has("zed"))
	assert.False(t, m.Has("bob"))
}

func TestListMatches_NewestFirst(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)
	repo := repository.NewMatchRepository(database)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []db.Match{
		{ID: "m1", PairKey: db.PairKey("me", "a"), UserAID: "a", UserBID: "me", CreatedAt: base},
		{ID: "m2", PairKey: db.PairKey("me", "b"), UserAID: "b", UserBID: "me", CreatedAt: base.Add(time.Hour)},
		{ID: "m3", PairKey: db.PairKey("x", "y"), UserAID: "x", UserBID: "y", CreatedAt: base},
	}
	require.NoError(t, database.Create(&rows).Error)

	got, err := repo.ListMatches(ctx, "me")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m2", got[0].ID)
	assert.Equal(t, "m1", got[1].ID)

	m, err := repo.GetMatch(ctx, "m3")
	require.NoError(t, err)
	assert.Equal(t, "x", m.UserAID)
}
