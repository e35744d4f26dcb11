package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGalleryConfig_Defaults(t *testing.T) {
	cfg, err := LoadGalleryConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIOrigin, cfg.APIOrigin)
	assert.Equal(t, DefaultAPIPrefix, cfg.APIPrefix)
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.APIBaseURL())
	assert.Equal(t, 4*time.Second, cfg.NotificationTTL)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, ":8080", cfg.Address())
}

func TestLoadGalleryConfig_FromEnv(t *testing.T) {
	t.Setenv("GALLERY_API_ORIGIN", "https://img.example.com/")
	t.Setenv("GALLERY_API_PREFIX", "v2")
	t.Setenv("GALLERY_NOTIFICATION_TTL", "1500ms")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadGalleryConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://img.example.com", cfg.APIOrigin)
	assert.Equal(t, "https://img.example.com/v2", cfg.APIBaseURL())
	assert.Equal(t, 1500*time.Millisecond, cfg.NotificationTTL)
	assert.Equal(t, "9090", cfg.ServerPort)
}

func TestLoadGalleryConfig_BadDuration(t *testing.T) {
	t.Setenv("GALLERY_VIEW_TTL", "forever")

	_, err := LoadGalleryConfig()
	require.Error(t, err)
}
