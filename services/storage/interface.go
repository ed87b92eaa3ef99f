package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrStorageUnavailable wraps every provider-side failure.
var ErrStorageUnavailable = errors.New("file storage unavailable")

// Object is a stored upload.
type Object struct {
	PublicID string
	URL      string
	Bytes    int64
}

// FileStore defines the storage operations behind session files.
type FileStore interface {
	Upload(ctx context.Context, r io.Reader, folder, filename, contentType string) (*Object, error)
	Delete(ctx context.Context, publicID, contentType string) error
}

// ResourceType maps a MIME type to the provider's resource kind. Audio is
// stored as video, as Cloudinary expects.
func ResourceType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"), strings.HasPrefix(contentType, "audio/"):
		return "video"
	default:
		return "raw"
	}
}
