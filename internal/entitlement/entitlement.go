// Package entitlement decides what a profile's plan allows and performs the
// plan and credit transitions.
package entitlement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oggyb/spotme/internal/config"
	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/session"
)

var ErrUpgradeRequired = errors.New("upgrade to Gold required")

func CanSwipeRight(p db.Profile) bool { return p.IsGold() || p.SwipeCredits > 0 }

func CanSuperSwipe(p db.Profile) bool { return p.SuperCredits > 0 }

func CanUseLocationFilter(p db.Profile) bool { return p.IsGold() }

func CanViewWhoLikedMe(p db.Profile) bool { return p.IsGold() }

// Policy holds the credit constants.
type Policy struct {
	DailyLimit      int
	DailySuperLimit int
	GoldCredits     int
	GoldSuperBonus  int
}

func PolicyFromConfig(c config.SwipeConfig) Policy {
	return Policy{
		DailyLimit:      c.DailyLimit,
		DailySuperLimit: c.DailySuperLimit,
		GoldCredits:     c.GoldCredits,
		GoldSuperBonus:  c.GoldSuperBonus,
	}
}

// Store is the remote side of plan and credit changes.
type Store interface {
	GetProfile(ctx context.Context, id string) (*db.Profile, error)
	UpgradeToGold(ctx context.Context, id string, credits, superBonus int) (*db.Profile, error)
	ResetDailyCredits(ctx context.Context, id, day string, swipes, super int) (*db.Profile, bool, error)
}

type Gate struct {
	store  Store
	policy Policy
	log    *slog.Logger
	now    func() time.Time
}

func NewGate(store Store, policy Policy, log *slog.Logger) *Gate {
	return &Gate{store: store, policy: policy, log: log, now: time.Now}
}

// WithClock replaces the time source. Tests only.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

func (g *Gate) Policy() Policy { return g.policy }

// Upgrade moves the session's user to Gold. The remote write happens first;
// the local profile is replaced with the stored record only once it succeeded.
// Upgrading a Gold user is a no-op.
func (g *Gate) Upgrade(ctx context.Context, st *session.Store) (db.Profile, error) {
	id := st.Identity()
	if id == nil {
		return db.Profile{}, session.ErrNotSignedIn
	}
	if p, ok := st.Profile(); ok && p.IsGold() {
		return p, nil
	}

	stored, err := g.store.UpgradeToGold(ctx, id.UserID, g.policy.GoldCredits, g.policy.GoldSuperBonus)
	if err != nil {
		return db.Profile{}, err
	}

	st.Replace(*stored)
	g.log.Info("plan upgraded", "user", id.UserID)
	return *stored, nil
}

// Reload replaces the session's local profile with the stored record. Every
// session keeps its own copy, so another session of the same user may have
// upgraded or spent credits since this one last wrote.
func (g *Gate) Reload(ctx context.Context, st *session.Store) (db.Profile, error) {
	id := st.Identity()
	if id == nil {
		return db.Profile{}, session.ErrNotSignedIn
	}
	stored, err := g.store.GetProfile(ctx, id.UserID)
	if err != nil {
		return db.Profile{}, err
	}
	st.Replace(*stored)
	return st.Onboarded()
}

// Require checks allowed against the local profile and, when it denies,
// once more against the stored record. It returns ErrUpgradeRequired when
// both deny.
func (g *Gate) Require(ctx context.Context, st *session.Store, allowed func(db.Profile) bool) (db.Profile, error) {
	p, err := st.Onboarded()
	if err != nil {
		return db.Profile{}, err
	}
	if allowed(p) {
		return p, nil
	}
	if p, err = g.Reload(ctx, st); err != nil {
		return db.Profile{}, err
	}
	if !allowed(p) {
		return p, ErrUpgradeRequired
	}
	return p, nil
}

// RefreshCredits applies the daily reset: the first credit-relevant action of
// a free user after a UTC day boundary refills the daily quota.
func (g *Gate) RefreshCredits(ctx context.Context, st *session.Store) (db.Profile, error) {
	p, err := st.Onboarded()
	if err != nil {
		return db.Profile{}, err
	}

	today := g.now().UTC().Format(time.DateOnly)
	if p.IsGold() || p.CreditsResetOn >= today {
		return p, nil
	}

	stored, reset, err := g.store.ResetDailyCredits(ctx, p.ID, today, g.policy.DailyLimit, g.policy.DailySuperLimit)
	if err != nil {
		return db.Profile{}, err
	}
	if reset {
		g.log.Debug("daily credits reset", "user", p.ID, "day", today)
	}

	st.Replace(*stored)
	return *stored, nil
}
