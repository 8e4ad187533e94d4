package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrAllProvidersFailed means every provider in the chain failed; callers are
// expected to continue with empty data and let the synthesizer take over.
var ErrAllProvidersFailed = errors.New("all providers failed")

// Provider is one source for a resource. Providers are tried in order and the
// first success wins — alternate hosts, not retry-with-backoff.
type Provider struct {
	Name  string
	Fetch func(ctx context.Context) (json.RawMessage, error)
}

// TryInOrder attempts each provider sequentially and returns the first
// successful payload along with the provider name that produced it. Individual
// failures are logged with the provider and never propagated on their own.
func TryInOrder(ctx context.Context, resource string, providers []Provider) (json.RawMessage, string, error) {
	for _, p := range providers {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		raw, err := p.Fetch(ctx)
		if err != nil {
			log.Warn().Err(err).Str("resource", resource).Str("provider", p.Name).Msg("provider failed, trying next")
			continue
		}
		return raw, p.Name, nil
	}
	return nil, "", fmt.Errorf("%s: %w", resource, ErrAllProvidersFailed)
}

// Client is a thin JSON-over-HTTP helper shared by every integration.
type Client struct {
	http *http.Client
}

func NewClient(h *http.Client) *Client {
	if h == nil {
		h = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{http: h}
}

// GetJSON performs a GET and returns the body for any HTTP 200 response.
// Non-200 statuses are errors so the caller's provider chain moves on.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 10<<20)) // 10MB max
}

// PostJSON posts a JSON payload and decodes a JSON response into target.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, payload, target interface{}) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if resp.StatusCode != 200 {
		return fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, truncate(string(respBody), 200))
	}
	if target != nil {
		return json.Unmarshal(respBody, target)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
