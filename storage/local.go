package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

const lockName = ".style-audit.lock"

// LocalSink writes artifacts below a directory. Writes are atomic and
// serialised between processes by a lock file in the directory.
type LocalSink struct {
	dir string
}

// NewLocalSink creates dir if needed.
func NewLocalSink(dir string) (*LocalSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &LocalSink{dir: dir}, nil
}

func (l *LocalSink) Name() string { return "local" }

// Dir returns the output directory.
func (l *LocalSink) Dir() string { return l.dir }

func (l *LocalSink) Put(ctx context.Context, runID string, artifacts []Artifact) error {
	lock := flock.New(filepath.Join(l.dir, lockName))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.dir, err)
	}
	defer lock.Unlock()

	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}
		path, err := l.path(a.Name)
		if err != nil {
			return err
		}
		if err := atomicWrite(path, a.Data); err != nil {
			return err
		}
	}
	return nil
}

func (l *LocalSink) Close(ctx context.Context) error { return nil }

// path maps an artifact name into the directory, refusing names that
// would escape it.
func (l *LocalSink) path(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return filepath.Join(l.dir, clean), nil
}

// atomicWrite writes data to a temp file next to path and renames it into
// place, so readers never see a partial file.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	tmp = nil
	return nil
}
