// Package proxy provides a client for the CIS proxy gateway, which performs
// outbound HTTP calls to component endpoints on the portal's behalf.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const (
	// GatewayName identifies the proxy gateway for logging and health tracking.
	GatewayName = "cis-proxy"

	// proxyPath is the relay endpoint on the gateway.
	proxyPath = "/cis-public/proxy"
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the proxy gateway client.
type ClientConfig struct {
	// BaseURL is the gateway base URL (required).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a plain client: probe retries and fallbacks are owned
	// by the health engine, not the transport.
	HTTPClient HTTPDoer

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client relays GET requests through the proxy gateway.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new proxy gateway client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Result is the gateway's annotated view of one upstream response.
type Result struct {
	// ComponentSuccess reports whether the upstream returned a 2xx.
	// Nil when the gateway did not include the field; callers treat
	// "not explicitly false" as success.
	ComponentSuccess *bool

	// StatusCode is the upstream's raw HTTP status code.
	StatusCode int

	// Body is the full relayed JSON body, synthetic fields included.
	Body map[string]interface{}
}

// Fetch relays a GET to the target URL through the gateway.
// A non-2xx response from the gateway itself or a malformed body is a
// transport error; upstream failure is reported via Result.ComponentSuccess.
func (c *Client) Fetch(ctx context.Context, target string) (*Result, error) {
	relayURL := fmt.Sprintf("%s%s?url=%s", c.baseURL, proxyPath, url.QueryEscape(target))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, relayURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("target", target).
		Msg("relaying request through proxy gateway")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading proxy response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("proxy gateway returned status %d", resp.StatusCode)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding proxy response: %w", err)
	}

	result := &Result{Body: parsed}
	if v, ok := parsed["componentSuccess"].(bool); ok {
		result.ComponentSuccess = &v
	}
	if v, ok := parsed["statusCode"].(float64); ok {
		result.StatusCode = int(v)
	}

	return result, nil
}
