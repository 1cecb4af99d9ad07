// Package cache implements the on-disk cache for remote include bodies.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheStore = (*Store)(nil)

const ignoreContent = "# Created by stitch. Do not commit.\n*\n"

// Store implements ports.CacheStore using one JSON file per URL, named by
// the SHA-256 of the URL. A TTL of zero disables the store.
type Store struct {
	dir string
	ttl time.Duration
	now func() time.Time

	mu     sync.RWMutex
	closed bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used to stamp and age entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open prepares the cache directory and writes the VCS ignore marker once.
func Open(dir string, ttl time.Duration, opts ...Option) (*Store, error) {
	s := &Store{
		dir: filepath.Clean(dir),
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if !s.enabled() {
		return s, nil
	}

	if err := os.MkdirAll(s.dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCache, "failed to create cache directory"), "dir", s.dir)
	}
	if err := s.writeMarker(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// Get returns the live entry for url, or nil on a miss.
func (s *Store) Get(url string) (*domain.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if !s.enabled() {
		return nil, nil
	}

	entry, err := s.read(s.path(url))
	if err != nil || entry == nil {
		return nil, err
	}
	if entry.URL != url || s.expired(entry) {
		return nil, nil
	}
	return entry, nil
}

// Put stores body for url.
func (s *Store) Put(url string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}
	if !s.enabled() {
		return nil
	}

	entry := domain.CacheEntry{
		URL:       url,
		FetchedAt: s.now(),
		TTL:       s.ttl,
		Body:      body,
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return zerr.Wrap(domain.ErrCache, err.Error())
	}

	if err := atomicWriteFile(s.path(url), data); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCache, err.Error()), "url", url)
	}
	return nil
}

// Clean removes every entry older than the store's TTL, plus any file that no
// longer decodes. It reports how many entries were removed.
func (s *Store) Clean() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, zerr.With(zerr.Wrap(domain.ErrCache, err.Error()), "dir", s.dir)
	}

	removed := 0
	for _, d := range dirEntries {
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, d.Name())
		entry, readErr := s.read(path)
		if readErr == nil && entry != nil && !s.expired(entry) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, zerr.With(zerr.Wrap(domain.ErrCache, err.Error()), "path", path)
		}
		removed++
	}
	return removed, nil
}

// Close releases the store. Further calls fail with ErrCache.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func (s *Store) enabled() bool {
	return s.ttl > 0
}

func (s *Store) checkOpen() error {
	if s.closed {
		return zerr.Wrap(domain.ErrCache, "store is closed")
	}
	return nil
}

// expired ages the entry with the store's current TTL.
func (s *Store) expired(entry *domain.CacheEntry) bool {
	if !s.enabled() {
		return true
	}
	aged := *entry
	aged.TTL = s.ttl
	return aged.Expired(s.now())
}

func (s *Store) read(path string) (*domain.CacheEntry, error) {
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrCache, err.Error()), "path", path)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCache, err.Error()), "path", path)
	}
	return &entry, nil
}

func (s *Store) path(url string) string {
	hash := sha256.Sum256([]byte(url))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:])+".json")
}

func (s *Store) writeMarker() error {
	marker := filepath.Join(s.dir, domain.CacheIgnoreFileName)
	if _, err := os.Stat(marker); err == nil {
		return nil
	}
	if err := atomicWriteFile(marker, []byte(ignoreContent)); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCache, err.Error()), "path", marker)
	}
	return nil
}

// atomicWriteFile writes data to a file atomically by writing to a temp file and renaming it.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, "cache-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
