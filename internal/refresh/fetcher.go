// Package refresh keeps URL-backed calendars in sync with their feeds.
package refresh

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/Leigh-Chr/calendraft-sub003/internal/config"
)

// FetchError reports a failed feed fetch with the upstream status when known.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: upstream returned %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher downloads ICS documents with a byte ceiling. When feed auth is
// configured it obtains bearer tokens via the OAuth2 client-credentials flow.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher creates a fetcher from refresh configuration.
func NewFetcher(cfg *config.RefreshConfig) *Fetcher {
	client := &http.Client{Timeout: cfg.FetchTimeout}

	if auth := cfg.FeedAuth; auth.ClientID != "" {
		cc := &clientcredentials.Config{
			TokenURL:     auth.TokenURL,
			ClientID:     auth.ClientID,
			ClientSecret: auth.ClientSecret,
			Scopes:       auth.Scopes,
		}
		// Token source reuses the timeout-bearing client for token requests.
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		authClient := cc.Client(ctx)
		authClient.Timeout = cfg.FetchTimeout
		client = authClient
	}

	return &Fetcher{client: client, maxBytes: cfg.MaxFetchBytes}
}

// Fetch downloads the feed at url, enforcing the configured size cap.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	// Read one byte past the cap so overflow is distinguishable from an
	// exact-size feed.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if int64(len(body)) > f.maxBytes {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("feed exceeds %d bytes", f.maxBytes)}
	}

	return body, nil
}
