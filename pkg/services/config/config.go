// Package config loads the service configuration from a YAML file and WORKREPORT_* variables.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/de-tools/work-reports/pkg/format"
	"github.com/de-tools/work-reports/pkg/render"
	"github.com/de-tools/work-reports/pkg/store/objectstore"
	"github.com/de-tools/work-reports/pkg/store/sqlite"
	"github.com/spf13/viper"
)

const EnvPrefix = "WORKREPORT"

type Config struct {
	Server   ServerConfig         `mapstructure:"server"`
	Database sqlite.Settings      `mapstructure:"database"`
	Storage  objectstore.Settings `mapstructure:"storage"`
	Format   FormatConfig         `mapstructure:"format"`
	Renderer render.Options       `mapstructure:"renderer"`
	Reports  ReportsConfig        `mapstructure:"reports"`
	Sweep    SweepConfig          `mapstructure:"sweep"`
	LogLevel string               `mapstructure:"log_level"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type FormatConfig struct {
	Locale   string `mapstructure:"locale"`
	Currency string `mapstructure:"currency"`
}

type ReportsConfig struct {
	URLTTL time.Duration `mapstructure:"url_ttl"`
}

// SweepConfig controls the orphan sweep. It is off unless enabled, and only reports orphans
// unless Delete is set too.
type SweepConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Delete  bool   `mapstructure:"delete"`
	Prefix  string `mapstructure:"prefix"`
}

var defaults = map[string]any{
	"server.host":                "127.0.0.1",
	"server.port":                "8080",
	"server.shutdown_timeout":    "10s",
	"database.path":              "work-reports.db",
	"storage.driver":             objectstore.DriverFS,
	"storage.bucket":             "",
	"storage.region":             "",
	"storage.profile":            "",
	"storage.endpoint":           "",
	"storage.use_path_style":     false,
	"storage.root":               "artifacts",
	"format.locale":              format.DefaultLocale,
	"format.currency":            format.DefaultCurrency,
	"renderer.page_size":         "A4",
	"renderer.creator":           "work-reports",
	"renderer.fonts.regular":     "",
	"renderer.fonts.bold":        "",
	"renderer.fonts.italic":      "",
	"renderer.fonts.bold_italic": "",
	"reports.url_ttl":            "1h",
	"sweep.enabled":              false,
	"sweep.delete":               false,
	"sweep.prefix":               "",
	"log_level":                  "info",
}

// LoadConfig reads path, if given, over the defaults. WORKREPORT_SERVER_PORT style variables
// override both; SERVER_HOST and SERVER_PORT are honoured as well.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.host", EnvPrefix+"_SERVER_HOST", "SERVER_HOST"); err != nil {
		return nil, fmt.Errorf("binding server host: %w", err)
	}
	if err := v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "SERVER_PORT"); err != nil {
		return nil, fmt.Errorf("binding server port: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := format.New(c.Format.Locale, c.Format.Currency); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	switch c.Storage.Driver {
	case objectstore.DriverS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage: bucket is required for the s3 driver")
		}
	case objectstore.DriverFS:
		if c.Storage.Root == "" {
			return fmt.Errorf("storage: root is required for the fs driver")
		}
	}
	if c.Reports.URLTTL <= 0 {
		return fmt.Errorf("reports: url_ttl must be positive")
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}
