package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"seungpyo.lee/ImageGallery/pkg/config"
)

const (
	DefaultAPIOrigin = "http://localhost:8000"
	DefaultAPIPrefix = "/api/v1"
)

type GalleryConfig struct {
	config.GlobalConfig

	// APIOrigin is scheme+host+port of the image store. Server-relative
	// image urls are resolved against it.
	APIOrigin string `env:"GALLERY_API_ORIGIN" envDefault:"http://localhost:8000"`
	APIPrefix string `env:"GALLERY_API_PREFIX" envDefault:"/api/v1"`

	RequestTimeout  time.Duration `env:"GALLERY_REQUEST_TIMEOUT" envDefault:"30s"`
	NotificationTTL time.Duration `env:"GALLERY_NOTIFICATION_TTL" envDefault:"4s"`
	ViewTTL         time.Duration `env:"GALLERY_VIEW_TTL" envDefault:"30m"`
	MaxUploadMemory int64         `env:"GALLERY_MAX_UPLOAD_MEMORY" envDefault:"33554432"`
}

func LoadGalleryConfig() (*GalleryConfig, error) {
	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}
	var cfg GalleryConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse gallery env: %w", err)
	}
	cfg.APIOrigin = strings.TrimRight(cfg.APIOrigin, "/")
	if cfg.APIOrigin == "" {
		return nil, fmt.Errorf("critical config missing: GALLERY_API_ORIGIN")
	}
	return &cfg, nil
}

// APIBaseURL is the prefix every REST call is built from.
func (c *GalleryConfig) APIBaseURL() string {
	prefix := strings.TrimRight(c.APIPrefix, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return strings.TrimRight(c.APIOrigin, "/") + prefix
}
