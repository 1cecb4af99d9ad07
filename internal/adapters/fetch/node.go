package fetch

import (
	"context"
	"time"

	"github.com/grindlemire/graft"
	"go.trai.ch/stitch/internal/adapters/logger"
	"go.trai.ch/stitch/internal/core/ports"
)

// NodeID is the unique identifier for the fetcher factory Graft node.
const NodeID graft.ID = "adapter.fetch"

// Factory builds a Fetcher once the cache store and timeout are known.
type Factory func(store ports.CacheStore, timeout time.Duration) ports.ContentFetcher

func init() {
	graft.Register(graft.Node[Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (Factory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return func(store ports.CacheStore, timeout time.Duration) ports.ContentFetcher {
				return New(NewHTTPClient(timeout), store, log)
			}, nil
		},
	})
}
