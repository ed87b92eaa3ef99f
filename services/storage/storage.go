package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// CloudinaryStore implements FileStore on Cloudinary.
type CloudinaryStore struct {
	cld       *cloudinary.Cloudinary
	cloudName string
	logger    *zap.Logger
}

// NewCloudinaryStore creates a new CloudinaryStore instance.
func NewCloudinaryStore(cld *cloudinary.Cloudinary, cloudName string, logger *zap.Logger) *CloudinaryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Initializing Cloudinary storage", zap.String("cloudName", cloudName))
	return &CloudinaryStore{cld: cld, cloudName: cloudName, logger: logger}
}

// Upload streams r into folder and returns the permanent identifier.
func (s *CloudinaryStore) Upload(ctx context.Context, r io.Reader, folder, filename, contentType string) (*Object, error) {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	params := uploader.UploadParams{
		Folder:           folder,
		ResourceType:     ResourceType(contentType),
		FilenameOverride: base,
		UseFilename:      api.Bool(true),
		UniqueFilename:   api.Bool(true),
	}
	result, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return nil, fmt.Errorf("%w: upload failed: %v", ErrStorageUnavailable, err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("%w: %s", ErrStorageUnavailable, result.Error.Message)
	}
	if result.PublicID == "" {
		return nil, fmt.Errorf("%w: no public ID returned", ErrStorageUnavailable)
	}
	return &Object{PublicID: result.PublicID, URL: result.SecureURL, Bytes: int64(result.Bytes)}, nil
}

// Delete removes a file from Cloudinary given its public ID.
func (s *CloudinaryStore) Delete(ctx context.Context, publicID, contentType string) error {
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: ResourceType(contentType),
	})
	if err != nil {
		return fmt.Errorf("%w: delete failed: %v", ErrStorageUnavailable, err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("%w: %s", ErrStorageUnavailable, result.Error.Message)
	}
	// "not found" is fine, the file is gone either way
	if result.Result != "ok" && result.Result != "not found" {
		s.logger.Warn("Unexpected destroy result", zap.String("publicID", publicID), zap.String("result", result.Result))
	}
	return nil
}
