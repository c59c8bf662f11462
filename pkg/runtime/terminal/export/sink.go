package export

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/de-tools/work-reports/pkg/services/report"
	"github.com/spf13/afero"
)

// StdoutTarget makes FileSink write the artifact to its writer instead of a file.
const StdoutTarget = "-"

// FileSink saves the local copy of a report. Target is a file path, an existing directory (the
// download's file name is used), or StdoutTarget.
type FileSink struct {
	Fs     afero.Fs
	Target string
	Stdout io.Writer

	// Written is the path of the last file written.
	Written string
}

func (s *FileSink) Deliver(_ context.Context, d report.Download) error {
	if s.Target == StdoutTarget {
		_, err := s.Stdout.Write(d.Body)
		return err
	}

	path := s.Target
	if path == "" {
		path = "."
	}
	isDir, err := afero.IsDir(s.Fs, path)
	if (err == nil && isDir) || strings.HasSuffix(path, "/") {
		path = filepath.Join(path, d.Filename)
	}
	if err := s.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(s.Fs, path, d.Body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	s.Written = path
	return nil
}
