package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client handles calls to the external token metadata and balance services.
type Client struct {
	httpClient    *http.Client
	tokenListBase string
	balanceBase   string
}

// Option configures a Client.
type Option func(*Client)

// WithTokenListBaseURL overrides the token list endpoint (used in tests).
func WithTokenListBaseURL(url string) Option {
	return func(c *Client) { c.tokenListBase = url }
}

// WithBalanceBaseURL overrides the balance endpoint (used in tests).
func WithBalanceBaseURL(url string) Option {
	return func(c *Client) { c.balanceBase = url }
}

// NewClient creates a new API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokenListBase: DefaultTokenListBaseURL,
		balanceBase:   DefaultBalanceBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON performs a GET request and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
