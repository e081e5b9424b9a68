// Package exchange provides the HTTP transport to the claims exchange.
// Submissions are FHIR message Bundles posted to the exchange endpoint,
// which responds synchronously with a response Bundle.
package exchange

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Transport submits an encoded request Bundle and returns the raw
// response Bundle bytes.
type Transport interface {
	Submit(ctx context.Context, bundle []byte) ([]byte, error)
}

// Config holds exchange client configuration
type Config struct {
	// BaseURL is the exchange submission endpoint
	BaseURL string
	// Timeout is the per-request timeout
	Timeout time.Duration
	// APIKey is sent as a bearer token when set
	APIKey string
}

// DefaultConfig returns sensible defaults for the exchange client
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8090/submit",
		Timeout: 30 * time.Second,
	}
}

// Client is an HTTP Transport implementation
type Client struct {
	config Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a new exchange client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Submit posts the Bundle to the exchange and returns the response body.
// Non-2xx statuses are returned as errors so the caller's circuit
// breaker counts them as failures.
func (c *Client) Submit(ctx context.Context, bundle []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(bundle))
	if err != nil {
		return nil, fmt.Errorf("building exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/fhir+json")
	req.Header.Set("Accept", "application/fhir+json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading exchange response: %w", err)
	}

	c.logger.Debug("exchange round trip",
		zap.Int("status", resp.StatusCode),
		zap.Int("response_bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("exchange returned status %d", resp.StatusCode)
	}
	return body, nil
}
