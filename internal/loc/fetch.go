package loc

import (
	"context"
	"io"
	"net/http"
)

// DefaultUserAgent is sent with every catalog request so loc.gov can identify the client.
const DefaultUserAgent = "loc-api/1.0 (+https://github.com/t-fbd/loc-api)"

// Fetcher performs a GET and returns the raw response body. Implementations
// report failures as *TransportError.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// HTTPFetcher fetches over an *http.Client. Retry, proxy and timeout policy
// belong to the client it wraps.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher wraps client, falling back to http.DefaultClient when nil.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client, userAgent: DefaultUserAgent}
}

// WithUserAgent returns a copy that sends ua instead of DefaultUserAgent.
func (f *HTTPFetcher) WithUserAgent(ua string) *HTTPFetcher {
	clone := *f
	clone.userAgent = ua
	return &clone
}

// Fetch issues a single GET. Any non-2xx status is a TransportError carrying the code.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode, Err: statusError(resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	return body, nil
}

type statusError int

func (s statusError) Error() string {
	return http.StatusText(int(s))
}
