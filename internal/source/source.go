// Package source fetches roster CSV exports from an upstream system
// over HTTP. The upstream typically sits behind a session that
// expires, so a 401/403 is surfaced as ErrAuthExpired and the handler
// tells the operator to re-export by hand instead of retrying.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrAuthExpired means the upstream rejected our credentials. The only
// recovery is a fresh export.
var ErrAuthExpired = errors.New("source: upstream authorization expired")

const (
	defaultTimeout = 30 * time.Second

	// maxBodySize caps a fetched export at 10 MiB. Real team rosters
	// are a few hundred rows; anything bigger is a wrong URL.
	maxBodySize = 10 << 20
)

// Fetcher downloads CSV exports.
type Fetcher struct {
	client  *http.Client
	headers map[string]string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = d }
}

// WithHeader adds a static header, e.g. an API token, to every request.
func WithHeader(key, value string) Option {
	return func(f *Fetcher) { f.headers[key] = value }
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{Timeout: defaultTimeout},
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the export at url and returns the raw bytes. The
// body may still carry a BOM or broken encoding; callers sanitize it
// before parsing.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrAuthExpired
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("fetch %s: export exceeds %d bytes", url, maxBodySize)
	}
	return body, nil
}
