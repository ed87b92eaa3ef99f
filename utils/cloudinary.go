package utils

import (
	"fmt"

	"ctrlroom/config"
	"ctrlroom/services/storage"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.uber.org/zap"
)

// Cloudinary initializes a Cloudinary-backed FileStore from the loaded config.
func Cloudinary(cfg config.Config, logger *zap.Logger) (*storage.CloudinaryStore, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("utils.Cloudinary: failed to initialize Cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return storage.NewCloudinaryStore(cld, cfg.CloudinaryCloudName, logger), nil
}
