package ports

import "context"

// ContentFetcher defines the interface for reading include content.
//
//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type ContentFetcher interface {
	// ReadFile reads a local file and decodes it with the named encoding.
	ReadFile(ctx context.Context, path, encoding string) (string, error)

	// FetchURL downloads a remote body, going through the cache when one is configured.
	FetchURL(ctx context.Context, url, encoding string) (string, error)
}
