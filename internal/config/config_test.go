package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, 5, cfg.Swipe.DailyLimit)
	assert.Equal(t, 99999, cfg.Swipe.GoldCredits)
	assert.Equal(t, "50051", cfg.GRPC.Port)
	assert.Contains(t, cfg.DB.DSN, "parseTime=true")
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("SWIPE_DAILY_LIMIT", "10")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_NAME", "spotme_test")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("LOG_SOURCE", "yes")

	cfg := New()

	assert.Equal(t, 10, cfg.Swipe.DailyLimit)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "spotme_test.db", cfg.DB.DSN)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Log.Source)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
grpc:
  port: "6000"
swipe:
  daily_limit: 3
blob:
  driver: s3
  bucket: photos
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("BLOB_BUCKET", "override")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "6000", cfg.GRPC.Port)
	assert.Equal(t, 3, cfg.Swipe.DailyLimit)
	assert.Equal(t, "s3", cfg.Blob.Driver)
	assert.Equal(t, "override", cfg.Blob.Bucket)
	// untouched keys keep their defaults
	assert.Equal(t, 99999, cfg.Swipe.GoldCredits)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
