// Package objectstore stores rendered report artifacts by path.
package objectstore

import (
	"context"
	"errors"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

type Object struct {
	Path         string
	Size         int64
	LastModified time.Time
}

// Store is a flat key/value object store. Upload overwrites an existing object at the same path.
type Store interface {
	Upload(ctx context.Context, path string, body []byte, contentType string) error
	List(ctx context.Context, prefix string) ([]Object, error)
	Delete(ctx context.Context, path string) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// Settings configures a driver. Fields a driver does not use are ignored.
type Settings struct {
	Driver       string `mapstructure:"driver"`
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	Profile      string `mapstructure:"profile"`
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
	Root         string `mapstructure:"root"`
}
