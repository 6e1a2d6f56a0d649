// Package bridge provides a client for a remote search bridge: an HTTP
// service serving the same search protocol over its own index databases.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.BridgeClient = (*Client)(nil)

// SecretHeader carries the shared secret on every request.
//
//nolint:gosec // G101: header name, not a credential.
const SecretHeader = "X-Bridge-Secret"

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
	HealthTimeout  = 5 * time.Second
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 512

// Config holds configuration for the bridge client.
type Config struct {
	// BaseURL is the bridge root URL. Trailing slashes are ignored.
	BaseURL string

	// Secret is sent in the X-Bridge-Secret header when set.
	Secret string

	// Timeout bounds search and sources requests (default: 30s).
	Timeout time.Duration
}

// Client talks to a remote bridge.
type Client struct {
	client  *http.Client
	baseURL string
	secret  string
}

// searchRequest is the bridge /search request format.
type searchRequest struct {
	Criteria []domain.SearchCriterion `json:"criteria"`
	Limit    int                      `json:"limit"`
	Offset   int                      `json:"offset"`
}

// NewClient creates a bridge client.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: bridge url is required", domain.ErrInvalidInput)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: baseURL,
		secret:  cfg.Secret,
	}, nil
}

// BaseURL returns the bridge root URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search forwards a request to POST /search.
func (c *Client) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	jsonBody, err := json.Marshal(searchRequest{
		Criteria: req.Criteria,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var result domain.SearchResult
	if err := c.do(ctx, http.MethodPost, "/search", bytes.NewReader(jsonBody), &result); err != nil {
		return nil, err
	}
	if result.Results == nil {
		result.Results = []domain.Record{}
	}
	return &result, nil
}

// Health probes GET /health with a short timeout.
func (c *Client) Health(ctx context.Context) (*driven.BridgeHealth, error) {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	var health driven.BridgeHealth
	if err := c.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Sources fetches GET /sources. Databases the bridge could not read are
// left out.
func (c *Client) Sources(ctx context.Context) (map[string][]domain.SourceCount, error) {
	var raw map[string]json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/sources", nil, &raw); err != nil {
		return nil, err
	}

	out := make(map[string][]domain.SourceCount, len(raw))
	for db, msg := range raw {
		var counts []domain.SourceCount
		if err := json.Unmarshal(msg, &counts); err != nil {
			continue
		}
		out[db] = counts
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.secret != "" {
		req.Header.Set(SecretHeader, c.secret)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: bridge error (status %d): %s",
			domain.ErrSearchUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
