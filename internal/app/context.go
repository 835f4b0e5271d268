package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/spotme/internal/blob"
	"github.com/oggyb/spotme/internal/cache"
	"github.com/oggyb/spotme/internal/config"
	"github.com/oggyb/spotme/internal/entitlement"
	"github.com/oggyb/spotme/internal/events"
	"github.com/oggyb/spotme/internal/identity"
	"github.com/oggyb/spotme/internal/repository"
	"github.com/oggyb/spotme/internal/session"
	"github.com/oggyb/spotme/internal/swipe"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Blob       blob.Store
	Events     *events.Bus

	Identity *identity.Service
	Sessions *session.Manager
	Gate     *entitlement.Gate
	Swipes   *swipe.Resolver
}

// New creates a new AppContext and wires the domain components on top of
// the infrastructure handles.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, blobStore blob.Store, logger *slog.Logger) *AppContext {
	profiles := repository.NewProfileRepository(db)
	bus := events.NewBus(rdb, logger)

	ids := identity.NewService(
		repository.NewAccountRepository(db),
		rdb,
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenTTL,
	)

	sessions := session.NewManager(profiles, session.Defaults{
		SwipeCredits: cfg.Swipe.DailyLimit,
		SuperCredits: cfg.Swipe.DailySuperLimit,
	}, logger)
	ids.OnIdentityChange(sessions.HandleIdentityChange)

	gate := entitlement.NewGate(profiles, entitlement.PolicyFromConfig(cfg.Swipe), logger)

	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Blob:       blobStore,
		Events:     bus,
		Identity:   ids,
		Sessions:   sessions,
		Gate:       gate,
		Swipes:     swipe.NewResolver(repository.NewSwipeStore(db), gate, bus, rdb, logger),
	}
}
