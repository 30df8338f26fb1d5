// Package satellite fetches a satellite base map for a site address from a
// static map provider.
package satellite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"site-mapper/internal/background"
	"site-mapper/internal/render"
)

const (
	// DefaultURLTemplate requests a satellite tile centered on the address.
	DefaultURLTemplate = "https://maps.googleapis.com/maps/api/staticmap?center={address}&zoom={zoom}&size={width}x{height}&maptype=satellite&key={key}"

	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 30 * time.Second

	// DefaultZoom frames a single building lot.
	DefaultZoom = 19

	maxImageBytes = 20 << 20
)

var (
	ErrNoAddress = errors.New("site address is empty")
	ErrNoAPIKey  = errors.New("satellite API key is not configured")
)

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("satellite provider returned %d: %s", e.StatusCode, e.Body)
}

// Client fetches static satellite images.
type Client struct {
	urlTemplate string
	apiKey      string
	httpClient  *http.Client
	userAgent   string
	zoom        int
	width       int
	height      int
}

// Option is a function that configures the client
type Option func(*Client)

// NewClient creates a client for the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		urlTemplate: DefaultURLTemplate,
		apiKey:      apiKey,
		userAgent:   "site-mapper/1.0",
		zoom:        DefaultZoom,
		width:       render.CanvasWidth,
		height:      render.CanvasHeight,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithURLTemplate sets the request URL. The placeholders {address}, {key},
// {zoom}, {width} and {height} are substituted, query-escaped.
func WithURLTemplate(tmpl string) Option {
	return func(c *Client) {
		if tmpl != "" {
			c.urlTemplate = tmpl
		}
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets a custom timeout for HTTP requests
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithZoom sets the provider zoom level.
func WithZoom(zoom int) Option {
	return func(c *Client) {
		c.zoom = zoom
	}
}

// WithSize sets the requested image size and the canvas it is fitted to.
func WithSize(width, height int) Option {
	return func(c *Client) {
		c.width, c.height = width, height
	}
}

// URL returns the request URL for address.
func (c *Client) URL(address string) string {
	r := strings.NewReplacer(
		"{address}", url.QueryEscape(address),
		"{key}", url.QueryEscape(c.apiKey),
		"{zoom}", strconv.Itoa(c.zoom),
		"{width}", strconv.Itoa(c.width),
		"{height}", strconv.Itoa(c.height),
	)
	return r.Replace(c.urlTemplate)
}

// Fetch downloads the satellite image for address and fits it to the canvas.
func (c *Client) Fetch(ctx context.Context, address string) (*background.Background, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNoAddress
	}
	if c.apiKey == "" && strings.Contains(c.urlTemplate, "{key}") {
		return nil, ErrNoAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(address), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	bg, err := background.Decode(io.LimitReader(resp.Body, maxImageBytes), c.width, c.height)
	if err != nil {
		return nil, err
	}
	bg.Source = background.SourceSatellite
	return bg, nil
}
