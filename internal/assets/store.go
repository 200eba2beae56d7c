package assets

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Store caches the manifest for the process lifetime. Concurrent first
// loads are collapsed into one read. A missing manifest is not cached so
// that a later build is picked up; a present one is kept until Invalidate.
type Store struct {
	path   string
	prefix string
	logger *slog.Logger

	group singleflight.Group

	mu       sync.RWMutex
	manifest *Manifest
}

// NewStore creates a store reading the manifest at path and producing
// URLs under prefix.
func NewStore(path, prefix string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, prefix: prefix, logger: logger}
}

// Path returns the manifest location.
func (s *Store) Path() string {
	return s.path
}

// Manifest returns the cached manifest, loading it on first use. It returns
// (nil, nil) when no manifest exists.
func (s *Store) Manifest() (*Manifest, error) {
	s.mu.RLock()
	m := s.manifest
	s.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	v, err, _ := s.group.Do("manifest", func() (any, error) {
		m, err := Load(s.path)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				return (*Manifest)(nil), nil
			}
			return nil, err
		}
		s.mu.Lock()
		s.manifest = m
		s.mu.Unlock()
		s.logger.Debug("manifest loaded", "path", s.path, "entries", m.Len())
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Manifest), nil
}

// Tags returns the head tags for the current manifest. A manifest that
// exists but cannot be read is logged and treated as absent.
func (s *Store) Tags() Tags {
	m, err := s.Manifest()
	if err != nil {
		s.logger.Warn("could not read client manifest", "path", s.path, "error", err)
	}
	return TagsFor(m, s.prefix)
}

// Invalidate drops the cached manifest.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.manifest = nil
	s.mu.Unlock()
}
