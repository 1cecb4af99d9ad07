package cache

import (
	"context"
	"time"

	"github.com/grindlemire/graft"
	"go.trai.ch/stitch/internal/core/ports"
)

// NodeID is the unique identifier for the cache opener Graft node.
const NodeID graft.ID = "adapter.cache"

// Opener opens a cache store once the configuration is known.
type Opener func(dir string, ttl time.Duration) (ports.CacheStore, error)

func init() {
	graft.Register(graft.Node[Opener]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (Opener, error) {
			return func(dir string, ttl time.Duration) (ports.CacheStore, error) {
				return Open(dir, ttl)
			}, nil
		},
	})
}
