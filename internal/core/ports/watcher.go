package ports

import (
	"context"
	"iter"
)

// WatchOp describes the kind of file system change.
type WatchOp int

const (
	// OpCreate indicates a file or directory was created.
	OpCreate WatchOp = iota
	// OpWrite indicates a file was modified.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed.
	OpRename
)

// WatchEvent is a single file system change.
type WatchEvent struct {
	Path      string
	Operation WatchOp
}

// Watcher defines the interface for observing file changes.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching root recursively plus any extra paths outside it.
	Start(ctx context.Context, root string, extra []string) error
	// Track adds files outside the root whose changes should be reported.
	Track(paths []string) error
	// Stop releases the underlying watcher.
	Stop() error
	// Events yields changes until the watcher stops.
	Events() iter.Seq[WatchEvent]
}
