package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/oshokin/release-catalog/internal/config"
	"github.com/oshokin/release-catalog/internal/domain/catalog"
	"github.com/oshokin/release-catalog/internal/logger"
)

// ErrBadStatus is returned when the feed answers with a non-200 status.
var ErrBadStatus = errors.New("unexpected http status")

// errEndpointRequired is returned when the client has no endpoint to query.
var errEndpointRequired = errors.New("feed endpoint must be provided")

// HTTPDoer is the subset of *http.Client used by the feed client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client reads releases from a paginated JSON endpoint.
type Client struct {
	// endpoint is the releases listing URL without pagination parameters.
	endpoint *url.URL
	// httpClient performs the requests.
	httpClient HTTPDoer
	// pageSize is sent as the per_page query parameter.
	pageSize int
	// requestTimeout bounds every page request; zero means no bound.
	requestTimeout time.Duration
	// userAgent is sent with every request when set.
	userAgent string
}

// Option configures client behaviour.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithPageSize sets the number of releases requested per page.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithRequestTimeout sets a timeout for every page request.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.requestTimeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header of every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a client for the releases listing at endpoint.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, errEndpointRequired
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse feed endpoint: %w", err)
	}

	client := &Client{
		endpoint:       parsed,
		httpClient:     http.DefaultClient,
		pageSize:       config.DefaultPageSize,
		requestTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// FetchAll requests pages 1, 2, ... until an empty page is returned and
// concatenates them in feed order. Any failure aborts the whole listing.
func (c *Client) FetchAll(ctx context.Context) ([]catalog.Release, error) {
	var releases []catalog.Release

	for page := 1; ; page++ {
		batch, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("fetch releases page %d: %w", page, err)
		}

		logger.DebugKV(ctx, "Fetched releases page", "page", page, "releases", len(batch))

		if len(batch) == 0 {
			break
		}

		releases = append(releases, batch...)
	}

	return releases, nil
}

// fetchPage requests a single page and decodes it.
func (c *Client) fetchPage(ctx context.Context, page int) ([]catalog.Release, error) {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	pageURL := c.pageURL(page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", pageURL, response.Status, ErrBadStatus)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return decodePage(body)
}

// pageURL returns the endpoint with per_page and page query parameters set.
func (c *Client) pageURL(page int) string {
	pageURL := *c.endpoint

	query := pageURL.Query()
	query.Set("per_page", strconv.Itoa(c.pageSize))
	query.Set("page", strconv.Itoa(page))
	pageURL.RawQuery = query.Encode()

	return pageURL.String()
}

// decodePage decodes a JSON array of releases, or a bare release object as a
// one-element page, and validates every release.
func decodePage(body []byte) ([]catalog.Release, error) {
	var releases []catalog.Release

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var release catalog.Release
		if err := json.Unmarshal(trimmed, &release); err != nil {
			return nil, fmt.Errorf("decode release: %w", err)
		}

		releases = []catalog.Release{release}
	} else if err := json.Unmarshal(trimmed, &releases); err != nil {
		return nil, fmt.Errorf("decode releases: %w", err)
	}

	for i := range releases {
		if err := releases[i].Validate(); err != nil {
			return nil, err
		}
	}

	return releases, nil
}
