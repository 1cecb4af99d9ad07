package domain

import "time"

// CacheEntry is one cached remote body.
type CacheEntry struct {
	URL       string        `json:"url"`
	FetchedAt time.Time     `json:"fetched_at"`
	TTL       time.Duration `json:"ttl"`
	Body      []byte        `json:"body"`
}

// Expired reports whether the entry is older than its TTL at now.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.Sub(e.FetchedAt) >= e.TTL
}
