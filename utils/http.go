package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"roster-scraper/internal/types"
)

// HTTPClient performs single timed requests. Every call carries its own
// timeout and a timed-out call is reported as a failure, never retried.
type HTTPClient struct {
	client *resty.Client
	config *types.Config
	logger types.Logger
}

// NewHTTPClient creates a new HTTP client with the given configuration
func NewHTTPClient(config *types.Config, logger types.Logger) *HTTPClient {
	client := resty.New()
	client.SetTransport(&http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	})
	client.SetHeader("User-Agent", config.UserAgent)
	client.SetHeader("Accept-Language", "en-US,en;q=0.5")
	client.SetRetryCount(0)

	return &HTTPClient{
		client: client,
		config: config,
		logger: logger,
	}
}

// Fetch performs a GET request and returns the body of a 2xx response
func (h *HTTPClient) Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	return h.FetchWithParams(ctx, url, nil, timeout)
}

// FetchWithParams performs a GET request with query parameters attached
func (h *HTTPClient) FetchWithParams(ctx context.Context, url string, params map[string]string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	h.logger.Debugf("Making request to %s", url)

	req := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	if len(params) > 0 {
		req.SetQueryParams(params)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, &types.FetchError{URL: url, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &types.FetchError{URL: url, StatusCode: resp.StatusCode()}
	}

	body := resp.Body()
	h.logger.Debugf("Successfully retrieved %d bytes from %s", len(body), url)
	return body, nil
}

// Probe reports whether url exists without reading its body.
// HEAD is tried first; servers that fail it or answer 405/501 get a GET
// whose body is closed unread.
func (h *HTTPClient) Probe(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, h.config.ProbeTimeout)
	defer cancel()

	resp, err := h.client.R().SetContext(ctx).Head(url)
	if err == nil && resp.StatusCode() != http.StatusMethodNotAllowed && resp.StatusCode() != http.StatusNotImplemented {
		return resp.IsSuccess()
	}
	if ctx.Err() != nil {
		return false
	}

	resp, err = h.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return false
	}
	if body := resp.RawBody(); body != nil {
		body.Close()
	}
	return resp.IsSuccess()
}

// ContentType returns the media type advertised by a HEAD request for url
func (h *HTTPClient) ContentType(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.ProbeTimeout)
	defer cancel()

	resp, err := h.client.R().SetContext(ctx).Head(url)
	if err != nil {
		return "", &types.FetchError{URL: url, Err: err}
	}
	if !resp.IsSuccess() {
		return "", &types.FetchError{URL: url, StatusCode: resp.StatusCode()}
	}
	return resp.Header().Get("Content-Type"), nil
}

// Download streams the body of url into w
func (h *HTTPClient) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.DownloadTimeout)
	defer cancel()

	resp, err := h.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return 0, &types.FetchError{URL: url, Err: err}
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		return 0, &types.FetchError{URL: url, StatusCode: resp.StatusCode()}
	}

	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("failed to read response body: %w", err)
	}

	h.logger.Debugf("Downloaded %d bytes from %s", n, url)
	return n, nil
}

// Close cleans up resources
func (h *HTTPClient) Close() {
	h.client.GetClient().CloseIdleConnections()
}
