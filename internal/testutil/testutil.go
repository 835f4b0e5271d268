// Package testutil spins up the in-memory SQLite + miniredis pair that the
// package tests run against. Each test gets its own isolated DB and Redis.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/spotme/internal/cache"
	"github.com/oggyb/spotme/internal/config"
	"github.com/oggyb/spotme/internal/db"
)

// NewDB opens a named shared-cache in-memory SQLite DB and migrates it.
// A single connection keeps transactions from tripping over table locks.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

// NewRedis starts a miniredis and returns a cache bound to it.
func NewRedis(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

// Profile returns an onboarded free-tier profile with the given credits.
func Profile(id string, credits int) db.Profile {
	return db.Profile{
		ID:             id,
		Email:          id + "@example.com",
		Name:           strings.ToUpper(id[:1]) + id[1:],
		Age:            28,
		Intent:         db.IntentAny,
		Emoji:          "💪",
		Onboarded:      true,
		PlanTier:       db.PlanFree,
		SwipeCredits:   credits,
		SuperCredits:   1,
		CreditsResetOn: time.Now().UTC().Format(time.DateOnly),
	}
}

// Gold returns an onboarded gold-tier profile.
func Gold(id string) db.Profile {
	p := Profile(id, 99999)
	p.PlanTier = db.PlanGold
	p.SuperCredits = 5
	return p
}

// Insert stores profiles as-is.
func Insert(t *testing.T, database *gorm.DB, profiles ...db.Profile) {
	t.Helper()
	for i := range profiles {
		require.NoError(t, database.Create(&profiles[i]).Error)
	}
}
