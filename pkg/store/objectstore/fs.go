package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

type fsStore struct {
	fs   afero.Fs
	root string
}

// NewFSStore keeps objects as files under root on the given filesystem. Signed URLs are plain
// file:// URLs and do not expire.
func NewFSStore(base afero.Fs, root string) Store {
	return &fsStore{
		fs:   afero.NewBasePathFs(base, root),
		root: root,
	}
}

// FSFactory is the DriverFactory of the fs driver.
func FSFactory(_ context.Context, settings Settings) (Store, error) {
	if settings.Root == "" {
		return nil, fmt.Errorf("fs driver: root is required")
	}
	root, err := filepath.Abs(settings.Root)
	if err != nil {
		return nil, fmt.Errorf("fs driver: %w", err)
	}
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("fs driver: creating root: %w", err)
	}
	return NewFSStore(osFs, root), nil
}

func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + key)
	if cleaned == "/" || strings.HasSuffix(key, "/") {
		return "", fmt.Errorf("invalid object path %q", key)
	}
	return cleaned, nil
}

func (s *fsStore) Upload(ctx context.Context, key string, body []byte, _ string) error {
	name, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", key, err)
	}
	if err := afero.WriteFile(s.fs, name, body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *fsStore) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object
	err := afero.Walk(s.fs, "/", func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			return nil
		}
		key := strings.TrimPrefix(filepath.ToSlash(p), "/")
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		objects = append(objects, Object{
			Path:         key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objects %q: %w", prefix, err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Path < objects[j].Path })
	return objects, nil
}

func (s *fsStore) Delete(_ context.Context, key string) error {
	name, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *fsStore) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	name, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if _, err := s.fs.Stat(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return "", fmt.Errorf("stat %s: %w", key, err)
	}
	u := url.URL{Scheme: "file", Path: path.Join(filepath.ToSlash(s.root), name)}
	return u.String(), nil
}
