// Package rest implements the gateway.Backend contract over HTTP, for
// talking to a remote paper-trading service that exposes the same
// /tickers, /balance and /orders surface the replay engine serves
// in-process.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"mockx/internal/gateway"
)

const userAgent = "mockx-gateway/0.1"

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is a thin synchronous HTTP client: URL composition, api-key
// header, timeout, and status-to-error mapping. Retries and rate
// limiting are deliberately left to callers; the paper service has no
// transient failure modes worth hiding.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("rest client requires a base url")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	full := c.baseURL + path
	if len(params) > 0 {
		full += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body failed: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	return nil, mapError(resp.StatusCode, raw)
}

// mapError turns non-2xx responses into the gateway's typed errors so
// callers branch identically whether the backend is remote or
// in-process.
func mapError(status int, payload []byte) error {
	message := errorMessage(payload)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &gateway.AuthError{HTTPError: gateway.HTTPError{Status: status, Message: message, Payload: payload}}
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", gateway.ErrNotFound, message)
	}
	if strings.Contains(strings.ToLower(message), "insufficient") {
		return fmt.Errorf("%w: %s", gateway.ErrInsufficientFunds, message)
	}
	return &gateway.HTTPError{Status: status, Message: message, Payload: payload}
}

func errorMessage(payload []byte) string {
	for _, key := range []string{"detail", "error", "message"} {
		if v := gjson.GetBytes(payload, key); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	if msg := strings.TrimSpace(string(payload)); msg != "" {
		return msg
	}
	return "request failed"
}

var _ gateway.Backend = (*Client)(nil)
