package ports

import (
	"context"

	"go.trai.ch/stitch/internal/core/domain"
)

// PathResolver defines the interface for turning an include target into files or a URL.
//
//go:generate mockgen -destination=mocks/resolver_mock.go -package=mocks -source=resolver.go
type PathResolver interface {
	// Resolve classifies the target, expands globs, applies excludes and sorts the matches.
	Resolve(ctx context.Context, req domain.ResolveRequest) (domain.ResolvedTarget, error)

	// Documents lists the files under root that match the patterns and none of the excludes.
	Documents(root string, patterns, exclude []string) ([]string, error)
}
