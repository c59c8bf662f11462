package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	// When
	cfg, err := LoadConfig("")

	// Then
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "work-reports.db", cfg.Database.DbPath)
	assert.Equal(t, "fs", cfg.Storage.Driver)
	assert.Equal(t, "en-US", cfg.Format.Locale)
	assert.Equal(t, "USD", cfg.Format.Currency)
	assert.Equal(t, time.Hour, cfg.Reports.URLTTL)
	assert.False(t, cfg.Sweep.Enabled)
	assert.False(t, cfg.Sweep.Delete)
}

func TestLoadConfig_ValidYAML_PopulatesAllSections(t *testing.T) {
	// Given
	path := writeConfig(t, `
server:
  port: "9090"
database:
  path: /var/lib/work-reports/reports.db
storage:
  driver: s3
  bucket: reports
  region: eu-central-1
  endpoint: http://localhost:9000
  use_path_style: true
format:
  locale: sl-SI
  currency: EUR
renderer:
  page_size: LETTER
  fonts:
    regular: /fonts/DejaVuSans.ttf
reports:
  url_ttl: 15m
sweep:
  enabled: true
  prefix: u1/
`)

	// When
	cfg, err := LoadConfig(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, "/var/lib/work-reports/reports.db", cfg.Database.DbPath)
	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, "reports", cfg.Storage.Bucket)
	assert.Equal(t, "eu-central-1", cfg.Storage.Region)
	assert.Equal(t, "http://localhost:9000", cfg.Storage.Endpoint)
	assert.True(t, cfg.Storage.UsePathStyle)
	assert.Equal(t, "sl-SI", cfg.Format.Locale)
	assert.Equal(t, "EUR", cfg.Format.Currency)
	assert.Equal(t, "LETTER", cfg.Renderer.PageSize)
	assert.Equal(t, "/fonts/DejaVuSans.ttf", cfg.Renderer.Fonts.Regular)
	assert.Equal(t, 15*time.Minute, cfg.Reports.URLTTL)
	assert.True(t, cfg.Sweep.Enabled)
	assert.Equal(t, "u1/", cfg.Sweep.Prefix)
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	// Given
	path := writeConfig(t, "format:\n  currency: EUR\n")
	t.Setenv("WORKREPORT_FORMAT_CURRENCY", "GBP")
	t.Setenv("SERVER_PORT", "7070")

	// When
	cfg, err := LoadConfig(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "GBP", cfg.Format.Currency)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "broken yaml", content: "server: [unclosed"},
		{name: "unknown currency", content: "format:\n  currency: XYZ1\n"},
		{name: "s3 without bucket", content: "storage:\n  driver: s3\n"},
		{name: "non-positive ttl", content: "reports:\n  url_ttl: 0s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given
			path := writeConfig(t, tt.content)

			// When
			cfg, err := LoadConfig(path)

			// Then
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidArgument)
}
