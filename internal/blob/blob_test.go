package blob_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/spotme/internal/blob"
	"github.com/oggyb/spotme/internal/config"
)

func TestPhotoKey(t *testing.T) {
	key, err := blob.PhotoKey("ana", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "profiles/ana/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	key, err = blob.PhotoKey("ana", "image/jpeg; charset=binary")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	_, err = blob.PhotoKey("ana", "application/pdf")
	assert.ErrorIs(t, err, blob.ErrUnsupportedType)

	_, err = blob.PhotoKey("ana", "")
	assert.ErrorIs(t, err, blob.ErrUnsupportedType)
}

func TestMemoryStore(t *testing.T) {
	store := blob.NewMemoryStore("https://cdn.example.com/")

	url, err := store.Put(context.Background(), "profiles/ana/x.png", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/profiles/ana/x.png", url)

	obj, ok := store.Get("profiles/ana/x.png")
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, []byte("png"), obj.Data)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := blob.New(ctx, config.BlobConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &blob.MemoryStore{}, s)

	_, err = blob.New(ctx, config.BlobConfig{Driver: "s3"})
	assert.Error(t, err, "bucket is required")

	s, err = blob.New(ctx, config.BlobConfig{
		Driver:    "s3",
		Bucket:    "photos",
		Region:    "us-east-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	require.NoError(t, err)
	assert.IsType(t, &blob.S3Store{}, s)

	_, err = blob.New(ctx, config.BlobConfig{Driver: "ftp"})
	assert.Error(t, err)
}
