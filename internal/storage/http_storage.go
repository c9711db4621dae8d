package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxAttempts = 3

// HTTPSource fetches artifacts from a base URL, e.g. a model registry or bucket gateway
type HTTPSource struct {
	baseURL string
	client  *http.Client
	backoff time.Duration
}

// NewHTTPSource creates an HTTP artifact source. Each retry waits
// attempt*backoff; a zero backoff defaults to one second.
func NewHTTPSource(baseURL string, timeout, backoff time.Duration) ArtifactSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if backoff <= 0 {
		backoff = time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		backoff: backoff,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,

			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
	}
}

func (h *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	artifactURL := h.baseURL + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artifactURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "application/yaml, application/json, */*")
	req.Header.Set("User-Agent", "Go-Housing-Estimator/1.0")

	// Only network errors and 5xx responses are retried
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = err
		} else {
			switch {
			case resp.StatusCode == http.StatusOK:
				return resp.Body, nil
			case resp.StatusCode == http.StatusNotFound:
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
			case resp.StatusCode >= 400 && resp.StatusCode < 500:
				resp.Body.Close()
				return nil, fmt.Errorf("client error: status code %d", resp.StatusCode)
			default:
				resp.Body.Close()
				lastErr = fmt.Errorf("server error: status code %d", resp.StatusCode)
			}
		}

		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * h.backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to fetch artifact after %d attempts: %w", maxAttempts, lastErr)
}

func (h *HTTPSource) Kind() string {
	return "http"
}
