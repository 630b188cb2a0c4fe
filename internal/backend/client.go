package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/roivaz/memory-mcp/internal/logging"
)

const maxBodyBytes = 4 << 20

// Client talks to the memory backend's REST API.
type Client struct {
	baseURL func() string
	http    *http.Client
	log     logging.Logger
}

// NewClient targets a fixed backend root.
func NewClient(baseURL string, timeout time.Duration, log logging.Logger) *Client {
	return NewResolvingClient(func() string { return baseURL }, timeout, log)
}

// NewResolvingClient calls baseURL on every request, so configuration changes
// apply to the next call.
func NewResolvingClient(baseURL func() string, timeout time.Duration, log logging.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log.WithName("backend"),
	}
}

// BaseURL reports the backend root the next request will target.
func (c *Client) BaseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.baseURL()), "/")
}

// GetMemories looks up the user's memories relevant to query.
func (c *Client) GetMemories(ctx context.Context, userID, query string) (*MemoryQueryResult, error) {
	endpoint := c.memoriesURL(userID) + "?" + url.Values{"query": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build memories request")
	}
	req.Header.Set("Accept", "application/json")

	var result MemoryQueryResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StoreMemory records a query/response pair for the user.
func (c *Client) StoreMemory(ctx context.Context, userID string, in StoreMemoryRequest) (*StoreMemoryResult, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, errors.Wrap(err, "encode store request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.memoriesURL(userID), bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build store request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var result StoreMemoryResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) memoriesURL(userID string) string {
	return c.BaseURL() + "/users/" + url.PathEscape(userID) + "/memories"
}

// do executes req and decodes a 2xx JSON body into out. Non-2xx responses are
// returned as *APIError without wrapping so callers can match on them.
func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error(err, "backend request failed", "method", req.Method, "path", req.URL.Path)
		return errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrap(err, "read backend response")
	}
	c.log.Debug("backend response", "method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, body)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "decode backend response")
	}
	return nil
}
