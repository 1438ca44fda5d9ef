// Package hub is the client for the content hub that hosts evaluation
// datasets and receives submission artifacts. It centralizes the HTTP
// plumbing used by the snapshot and publish operations.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 60 * time.Second

// DefaultUserAgent is the user agent string for hub requests.
const DefaultUserAgent = "dataset-miner/1.0"

// Options configures the hub client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client talks to one hub instance. Token, when set, is sent as a bearer
// credential on every request.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
}

// New creates a hub client for baseURL.
func New(baseURL, token string, opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		userAgent:  opts.UserAgent,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

// ResolveRevision resolves a mutable revision label (such as "main") to the
// immutable revision id it currently points at.
func (c *Client) ResolveRevision(ctx context.Context, namespace, label string) (string, error) {
	var resp struct {
		SHA string `json:"sha"`
	}
	path := fmt.Sprintf("/api/datasets/%s/revision/%s", namespace, url.PathEscape(label))
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return "", err
	}
	if resp.SHA == "" {
		return "", &Error{URL: c.baseURL + path, Message: "revision response missing sha"}
	}
	return resp.SHA, nil
}

// FetchBytes fetches an arbitrary hub path and returns the raw body. Used
// by callers that own their own decoding, such as manifest validation.
func (c *Client) FetchBytes(ctx context.Context, path string) ([]byte, error) {
	return c.getBytes(ctx, path)
}

// newRequest builds a request with auth and user-agent headers set.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &Error{URL: c.baseURL + path, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// getJSON fetches path and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.getBytes(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{URL: c.baseURL + path, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// getBytes fetches path and returns the raw response body.
func (c *Client) getBytes(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{URL: c.baseURL + path, Message: "HTTP request failed", Cause: err, Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: c.baseURL + path, Message: "failed to read response body", Cause: err, Retryable: true}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			URL:       c.baseURL + path,
			Message:   fmt.Sprintf("HTTP status %d", resp.StatusCode),
			Retryable: resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}
	return body, nil
}
