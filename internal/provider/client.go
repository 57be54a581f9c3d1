package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"marketfetch/internal/apperrors"
)

// DefaultTimeout bounds every outbound provider call so a hung provider
// never holds a worker indefinitely.
const DefaultTimeout = 30 * time.Second

// HTTPClient wraps http.Client with the defaults shared by all provider
// adapters: request timeout, browser User-Agent and JSON accept header.
type HTTPClient struct {
	client    *http.Client
	userAgent string
}

// NewHTTPClient creates a client with the given per-request timeout.
// A zero timeout falls back to DefaultTimeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		client:    &http.Client{Timeout: timeout},
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	}
}

// GetJSON performs one GET request and decodes the JSON body into out.
// Transport failures, 5xx and 429 responses come back wrapping
// apperrors.ErrProviderUnavailable so callers can tell retryable faults
// from hard request errors.
func (c *HTTPClient) GetJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", apperrors.ErrProviderUnavailable, resp.StatusCode)
	}
	if resp.StatusCode == http.StatusNotFound {
		// unknown symbol, not a provider fault
		return fmt.Errorf("%w: status 404", apperrors.ErrEmptyResult)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: malformed body: %v", apperrors.ErrProviderUnavailable, err)
	}

	return nil
}

// FetchJSON is GetJSON with the adapters' shared bounded retry: up to
// three attempts with short exponential backoff, retrying only
// transport-level faults. The orchestrator never retries a provider
// within one request, so this is the only retry layer.
func FetchJSON(ctx context.Context, c *HTTPClient, url string, headers map[string]string, out any) error {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.GetJSON(ctx, url, headers, out)
		if errors.Is(err, apperrors.ErrProviderUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}
