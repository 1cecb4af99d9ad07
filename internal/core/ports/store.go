package ports

import "go.trai.ch/stitch/internal/core/domain"

// CacheStore defines the interface for the remote content cache.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// Get returns the live entry for url.
	// Returns nil, nil on a miss or when the entry has expired.
	Get(url string) (*domain.CacheEntry, error)

	// Put stores body for url, stamped with the current time.
	Put(url string, body []byte) error

	// Clean removes expired entries and reports how many were removed.
	Clean() (int, error)

	// Close releases the store. Further calls fail.
	Close() error
}
