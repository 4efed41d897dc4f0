// Package api holds the HTTP clients for the public services chaingate
// talks to.
//
// Files:
//
//	config.go    - endpoints and network constants
//	types.go     - response payloads
//	client.go    - shared client (timeouts, status handling, error mapping)
//	esplora.go   - esplora REST (mempool.space, blockstream): balances, utxos, fees, broadcast, history
//	explorer.go  - etherscan-style account history
//	coingecko.go - USD spot prices
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chinmay1088/chaingate/chain"
)

const maxBodyBytes = 4 << 20

// Client handles HTTP calls to external services.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Code, e.Body)
}

// getJSON performs a GET and decodes the JSON body into out. Transport
// failures and bad statuses come back as *chain.NetworkError.
func (c *Client) getJSON(ctx context.Context, op, url string, out interface{}) error {
	body, err := c.do(ctx, op, http.MethodGet, url, "", nil)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", op, err)
	}
	return nil
}

// getText performs a GET and returns the trimmed body.
func (c *Client) getText(ctx context.Context, op, url string) (string, error) {
	body, err := c.do(ctx, op, http.MethodGet, url, "", nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// postText sends a text/plain body. Bad statuses are returned as
// *StatusError so callers can tell a rejection from a transport failure.
func (c *Client) postText(ctx context.Context, op, url, payload string) ([]byte, error) {
	return c.do(ctx, op, http.MethodPost, url, "text/plain", strings.NewReader(payload))
}

func (c *Client) do(ctx context.Context, op, method, url, contentType string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, chain.NewNetworkError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, chain.NewNetworkError(op, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if method == http.MethodPost && resp.StatusCode < 500 {
			return nil, statusErr
		}
		return nil, chain.NewNetworkError(op, statusErr)
	}

	return body, nil
}
