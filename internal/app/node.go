package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stitch/internal/adapters/cache"     //nolint:depguard // Wired in app layer
	"go.trai.ch/stitch/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/stitch/internal/adapters/fetch"     //nolint:depguard // Wired in app layer
	"go.trai.ch/stitch/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/stitch/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/stitch/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/stitch/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/stitch/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			fs.ResolverNodeID,
			fs.HasherNodeID,
			telemetry.TracerNodeID,
			telemetry.RecorderNodeID,
			cache.NodeID,
			fetch.NodeID,
			watcher.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			resolver, err := graft.Dep[ports.PathResolver](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			recorder, err := graft.Dep[*telemetry.Recorder](ctx)
			if err != nil {
				return nil, err
			}

			openCache, err := graft.Dep[cache.Opener](ctx)
			if err != nil {
				return nil, err
			}

			newFetcher, err := graft.Dep[fetch.Factory](ctx)
			if err != nil {
				return nil, err
			}

			newWatcher, err := graft.Dep[watcher.Factory](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, log, resolver, hasher, tracer, recorder, openCache, newFetcher, newWatcher), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}
