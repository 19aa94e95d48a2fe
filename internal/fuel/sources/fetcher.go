package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/annedoesstuff/budgetBenzin/internal/fuel"
)

// Fetcher retrieves a named document such as "prices.json".
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// HTTPFetcher downloads documents relative to a base URL, always bypassing
// caches so the freshest copy is returned.
type HTTPFetcher struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewHTTPFetcher creates a fetcher for documents below baseURL. maxRetries
// is the number of additional attempts after a failed request.
func NewHTTPFetcher(client *http.Client, baseURL string, maxRetries int) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      maxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: newCircuitBreaker("price-documents"),
	}
}

func (f *HTTPFetcher) Name() string {
	return f.baseURL
}

func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		u, err := url.JoinPath(f.baseURL, name)
		if err != nil {
			return nil, err
		}
		parsed, err := url.Parse(u)
		if err != nil {
			return nil, err
		}
		q := parsed.Query()
		q.Set("_", strconv.FormatInt(time.Now().UnixNano(), 10))
		parsed.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Cache-Control", "no-cache, no-store, max-age=0")
		req.Header.Set("Pragma", "no-cache")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, f.httpCfg, f.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", fuel.ErrUnreachable, name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", fuel.ErrUnreachable, name, err)
	}
	return body, nil
}

// DirFetcher reads documents from a local directory, e.g. the output folder
// of the price collection job.
type DirFetcher struct {
	dir string
}

func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{dir: dir}
}

func (f *DirFetcher) Name() string {
	return f.dir
}

func (f *DirFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fuel.ErrUnreachable, name, err)
	}
	body, err := os.ReadFile(filepath.Join(f.dir, filepath.Clean("/"+name)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fuel.ErrUnreachable, err)
	}
	return body, nil
}
