package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/spotme/internal/config"
)

// NewDB opens the configured database and migrates the schema.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.DB)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.DB.LogSQL {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate keeps the schema in sync with the models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func dialectorFor(c config.DBConfig) (gorm.Dialector, error) {
	switch c.Driver {
	case "", "mysql":
		return mysql.Open(c.DSN), nil
	case "postgres":
		return postgres.Open(c.DSN), nil
	case "sqlite":
		return sqlite.Open(c.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", c.Driver)
	}
}
