// Package catalog fetches documents from the remote device-catalog service.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/patchbay/internal/logging"
)

// DefaultFormPath is where the catalog serves the "new device type" form.
const DefaultFormPath = "/super_admin/device_types/form"

// maxDocumentSize caps how much of a response body is read.
const maxDocumentSize = 4 << 20

// StatusError reports a non-success response from the catalog.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog %s returned %s", e.URL, e.Status)
}

// Client implements ports.CatalogClient over HTTP.
type Client struct {
	baseURL  string
	formPath string
	http     *http.Client
	logger   *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithFormPath overrides DefaultFormPath.
func WithFormPath(path string) Option {
	return func(cl *Client) {
		cl.formPath = path
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// New creates a Client for the catalog at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		formPath: DefaultFormPath,
		http:     &http.Client{Timeout: 10 * time.Second},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchDeviceTypeForm retrieves the form markup verbatim.
// Transport failures are wrapped; non-2xx responses return a *StatusError.
func (c *Client) FetchDeviceTypeForm(ctx context.Context) (string, error) {
	url := c.baseURL + "/" + strings.TrimLeft(c.formPath, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	c.logger.Debug("Fetching device type form", "url", url)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch device type form: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDocumentSize))
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return "", fmt.Errorf("failed to read device type form: %w", err)
	}
	return string(body), nil
}
