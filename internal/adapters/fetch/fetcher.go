// Package fetch reads local include files and downloads remote ones.
package fetch

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"go.trai.ch/stitch/internal/core/domain"
	"go.trai.ch/stitch/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.ContentFetcher = (*Fetcher)(nil)

// maxBodyBytes bounds a single remote body.
const maxBodyBytes = 32 << 20

// Fetcher implements ports.ContentFetcher. Remote bodies go through the cache
// store when one is set, and concurrent requests for one URL share a download.
type Fetcher struct {
	client *http.Client
	store  ports.CacheStore
	logger ports.Logger
	group  singleflight.Group
}

// NewHTTPClient returns the client used for remote includes.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = domain.DefaultFetchTimeout
	}
	return &http.Client{Timeout: timeout}
}

// New creates a Fetcher. store may be nil to disable caching.
func New(client *http.Client, store ports.CacheStore, logger ports.Logger) *Fetcher {
	if client == nil {
		client = NewHTTPClient(domain.DefaultFetchTimeout)
	}
	return &Fetcher{
		client: client,
		store:  store,
		logger: logger,
	}
}

// ReadFile reads and decodes a local file.
func (f *Fetcher) ReadFile(ctx context.Context, path, encoding string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	//nolint:gosec // Path comes from the resolver
	data, err := os.ReadFile(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrReadFailed, err.Error()), "path", path)
	}

	text, err := domain.DecodeText(data, encoding)
	if err != nil {
		return "", zerr.With(err, "path", path)
	}
	return text, nil
}

// FetchURL downloads and decodes a remote body.
func (f *Fetcher) FetchURL(ctx context.Context, url, encoding string) (string, error) {
	body, err := f.body(ctx, url)
	if err != nil {
		return "", err
	}

	text, err := domain.DecodeText(body, encoding)
	if err != nil {
		return "", zerr.With(err, "url", url)
	}
	return text, nil
}

func (f *Fetcher) body(ctx context.Context, url string) ([]byte, error) {
	if f.store != nil {
		entry, err := f.store.Get(url)
		if err != nil {
			f.logger.Warn("ignoring unreadable cache entry for " + url + ": " + err.Error())
		} else if entry != nil {
			return entry.Body, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The shared download outlives any single caller; each caller still
	// stops waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(url, func() (any, error) {
		return f.download(shared, url)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	body, _ := res.Val.([]byte)

	if f.store != nil {
		if err := f.store.Put(url, body); err != nil {
			f.logger.Warn("failed to cache " + url + ": " + err.Error())
		}
	}
	return body, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrFetch, err.Error()), "url", url)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrFetch, err.Error()), "url", url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		fetchErr := zerr.With(zerr.Wrap(domain.ErrFetch, "unexpected status "+resp.Status), "url", url)
		return nil, zerr.With(fetchErr, "status", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrFetch, err.Error()), "url", url)
	}
	if len(body) > maxBodyBytes {
		tooLarge := zerr.With(zerr.Wrap(domain.ErrFetch, "response body too large"), "url", url)
		return nil, zerr.With(tooLarge, "limit", maxBodyBytes)
	}
	return body, nil
}
