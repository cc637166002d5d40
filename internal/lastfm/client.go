package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"scrobvault/internal/trace"
)

// DefaultBaseURL is the root of the last.fm web service API.
const DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

const (
	// defaultTimeout bounds a single API request.
	defaultTimeout = 60 * time.Second

	// defaultMaxRetries is how many times transient failures are retried.
	defaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 10 * 1024 * 1024
)

// Client talks to the last.fm API. It is safe for concurrent use.
type Client struct {
	http       *http.Client
	baseURL    *url.URL
	apiKey     string
	maxRetries int
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, mainly for tests and mirrors.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil {
			c.baseURL = u
		}
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithMaxRetries sets how many times transient failures are retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// NewClient constructs a Client with the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("last.fm API key must not be empty")
	}

	base, err := url.Parse(DefaultBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse default base URL: %w", err)
	}

	c := &Client{
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        16,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: defaultTimeout,
		},
		baseURL:    base,
		apiKey:     apiKey,
		maxRetries: defaultMaxRetries,
		retryDelay: retryBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RecentTracksOptions selects which slice of the scrobble history to fetch.
type RecentTracksOptions struct {
	// PerPage is the page size, at most 200. Zero means 200.
	PerPage int
	// Page is the one-indexed page to fetch. Zero means the first page.
	Page int
	// Extended asks for extended data: artist images and the loved flag.
	Extended bool
	// From bounds the range from below, inclusive (unix seconds, UTC).
	From *time.Time
	// To bounds the range from above, exclusive (unix seconds, UTC).
	To *time.Time
}

// RecentTracks fetches one page of a user's scrobble history.
//
// Documentation: https://www.last.fm/api/show/user.getRecentTracks
func (c *Client) RecentTracks(ctx context.Context, username string, opts RecentTracksOptions) (*RecentTracksPage, error) {
	if username == "" {
		return nil, fmt.Errorf("username must not be empty")
	}

	reqURL := c.recentTracksURL(username, opts)
	tracer := trace.FromContext(ctx)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * (1 << (attempt - 1))
			trace.Debugf(tracer, "lastfm.retry",
				fmt.Sprintf("attempt %d after %s: %v", attempt+1, delay, lastErr))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		page, retryable, err := c.fetchPage(ctx, reqURL)
		if err == nil {
			trace.Debugf(tracer, "lastfm.request",
				fmt.Sprintf("user=%s page=%d/%d tracks=%d", username, page.Page, page.Pages, len(page.Tracks)))
			return page, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("giving up after %d attempts: %w", c.maxRetries+1, lastErr)
}

// fetchPage performs a single request. The second result reports whether
// the failure is transient and worth retrying.
func (c *Client) fetchPage(ctx context.Context, reqURL string) (*RecentTracksPage, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Network-level failures are worth retrying unless the context is
		// already gone.
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("last.fm returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Code == 0 {
			return nil, false, fmt.Errorf("last.fm returned status %d with undecodable body", resp.StatusCode)
		}
		return nil, false, &apiErr
	}

	raw, err := decodeRaw(body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode response JSON: %w", err)
	}
	page, err := mapPage(raw)
	if err != nil {
		return nil, false, err
	}
	return page, false, nil
}

func (c *Client) recentTracksURL(username string, opts RecentTracksOptions) string {
	perPage := opts.PerPage
	if perPage <= 0 || perPage > 200 {
		perPage = 200
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}

	u := *c.baseURL
	q := u.Query()
	q.Set("method", "user.getrecenttracks")
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(perPage))
	q.Set("user", username)
	q.Set("page", strconv.Itoa(page))
	if opts.From != nil {
		q.Set("from", strconv.FormatInt(opts.From.Unix(), 10))
	}
	if opts.To != nil {
		q.Set("to", strconv.FormatInt(opts.To.Unix(), 10))
	}
	if opts.Extended {
		q.Set("extended", "1")
	} else {
		q.Set("extended", "0")
	}
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	return u.String()
}
