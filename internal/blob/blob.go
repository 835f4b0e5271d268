// Package blob stores uploaded files and returns their public URLs.
package blob

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/oggyb/spotme/internal/config"
)

var ErrUnsupportedType = errors.New("unsupported content type")

// MaxPhotoBytes bounds a profile photo upload.
const MaxPhotoBytes = 5 << 20

type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// New picks the store named by the config.
func New(ctx context.Context, c config.BlobConfig) (Store, error) {
	switch c.Driver {
	case "", "memory":
		return NewMemoryStore(c.PublicBaseURL), nil
	case "s3":
		return NewS3Store(ctx, c)
	default:
		return nil, fmt.Errorf("unsupported blob driver %q", c.Driver)
	}
}

var photoExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// PhotoKey returns profiles/<uid>/<uuid><ext> for an image content type.
func PhotoKey(userID, contentType string) (string, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	ext, ok := photoExt[strings.ToLower(mt)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return path.Join("profiles", userID, uuid.NewString()+ext), nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
