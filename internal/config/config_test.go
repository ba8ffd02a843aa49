package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guestbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppLimits_Overlay(t *testing.T) {
	path := writeFile(t, `
page_size: 20
max_content_length: 500
supported_file_types:
  - image/png
`)

	limits, err := LoadAppLimits(path, DefaultAppLimits())
	require.NoError(t, err)

	assert.Equal(t, 20, limits.PageSize)
	assert.Equal(t, 500, limits.MaxContentLength)
	assert.Equal(t, []string{"image/png"}, limits.SupportedFileTypes)

	// Untouched keys keep their defaults
	assert.Equal(t, 50, limits.MaxPageSize)
	assert.Equal(t, int64(10*1024*1024), limits.MaxFileSize)
	assert.Equal(t, 8, limits.EnrichConcurrency)
}

func TestLoadAppLimits_PageSizeAboveMax(t *testing.T) {
	path := writeFile(t, "page_size: 80\n")

	_, err := LoadAppLimits(path, DefaultAppLimits())
	assert.Error(t, err)
}

func TestLoadAppLimits_MissingFile(t *testing.T) {
	base := DefaultAppLimits()
	limits, err := LoadAppLimits(filepath.Join(t.TempDir(), "nope.yaml"), base)
	assert.Error(t, err)
	assert.Equal(t, base, limits)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("IDENTITY_MAX_AGE", "")
	t.Setenv("RATE_LIMIT_RPS", "not-a-number")
	t.Setenv("RATE_LIMIT_BURST", "")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("GUESTBOOK_CONFIG", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 31536000, cfg.IdentityMaxAge)
	assert.Equal(t, 2.0, cfg.RateLimitRPS)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.Equal(t, "require", cfg.DBSSLMode)
	assert.Equal(t, 10, cfg.App.PageSize)
	assert.Equal(t, 200, cfg.App.MaxContentLength)
}
