package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// FileStore keeps one JSON file per key inside a directory
type FileStore struct {
	fs  afero.Fs
	dir string
	now Clock
}

// FileOption configures a FileStore
type FileOption func(*FileStore)

// WithFs sets the filesystem backing the store
func WithFs(fsys afero.Fs) FileOption {
	return func(s *FileStore) {
		s.fs = fsys
	}
}

// WithClock sets the clock used to stamp and age entries
func WithClock(now Clock) FileOption {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewFileStore creates a store rooted at dir. The directory is created lazily.
func NewFileStore(dir string, opts ...FileOption) *FileStore {
	s := &FileStore{
		fs:  afero.NewOsFs(),
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the cache directory
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Read returns the cached bytes for key
func (s *FileStore) Read(key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: read %s: %w", key, err)
	}
	return data, true, nil
}

// Fresh reports whether the file for key exists and is within ttl
func (s *FileStore) Fresh(key string, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	info, err := s.fs.Stat(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("cache: stat %s: %w", key, err)
	}
	if info.IsDir() {
		return false, nil
	}
	return isFresh(info.ModTime(), s.now(), ttl), nil
}

// Write replaces the entry for key. Data lands in a temp file that is renamed
// over the previous entry, so readers never observe a partial body.
func (s *FileStore) Write(key string, data []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("cache: create dir %s: %w", s.dir, err)
	}

	tmp, err := afero.TempFile(s.fs, s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("cache: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("cache: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("cache: close %s: %w", key, err)
	}

	target := s.path(key)
	if err := s.fs.Rename(tmpName, target); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("cache: replace %s: %w", key, err)
	}

	now := s.now()
	if err := s.fs.Chtimes(target, now, now); err != nil {
		return fmt.Errorf("cache: stamp %s: %w", key, err)
	}
	return nil
}

// Clear removes every cached entry
func (s *FileStore) Clear() error {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("cache: list %s: %w", s.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := s.fs.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("cache: remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Close is a no-op for file stores
func (s *FileStore) Close() error {
	return nil
}
