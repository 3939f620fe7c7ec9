package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/nebulus-dev/gantry/internal/errors"
	"github.com/nebulus-dev/gantry/pkg/search"
)

// Client is the fetch half of the search box: a search.Searcher that
// queries a Gantry server's /api/search endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a search client for the server at baseURL
// (e.g. "http://localhost:8090").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Search implements search.Searcher against the remote endpoint.
func (c *Client) Search(ctx context.Context, query string) ([]search.Result, error) {
	u := fmt.Sprintf("%s/api/search?q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.FromError(err, errors.CodeSearchFailed)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.FromError(err, errors.CodeSearchFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.CodeSearchBadStatus).
			WithDetail("GET %s returned %d", u, resp.StatusCode)
	}

	var results []search.Result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, errors.FromError(err, errors.CodeSearchFailed)
	}
	return results, nil
}
