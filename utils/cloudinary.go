package utils

import (
	"fmt"

	"maidbook/config"

	"github.com/cloudinary/cloudinary-go/v2"
)

// Cloudinary returns a client built from CLOUDINARY_URL, or nil when the
// URL is not configured.
func Cloudinary() (*cloudinary.Cloudinary, error) {
	url := config.AppConfig.CloudinaryURL
	if url == "" {
		return nil, nil
	}
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("utils.Cloudinary: failed to initialize Cloudinary: %w", err)
	}
	return cld, nil
}
