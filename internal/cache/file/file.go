// Package file is implementation of cache interface backed by a JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/citypulse/internal/cache"
)

var log = logrus.WithField("layer", "cache").WithField("package", "file")

type file struct {
	path string
	mu   sync.RWMutex
}

// New creates cache stored in path. Parent directories are created if needed.
func New(path string) (cache.Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	return &file{path: path}, nil
}

func (f *file) Read(_ context.Context) (*cache.Snapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache.New(), nil
		}
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var s cache.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache: %w", err)
	}

	return s.Normalize(), nil
}

// Write writes snapshot into temporary file and renames it over the cache file.
func (f *file) Write(_ context.Context, s *cache.Snapshot) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		if err := os.Remove(tmp.Name()); err != nil {
			log.WithError(err).Warn("failed to remove temp file")
		}
		return fmt.Errorf("failed to replace cache: %w", err)
	}

	return nil
}
