// Package storage implements the vector-store adapter boundary: an
// HTTP/JSON client over the six operations the engine coordinator calls
// (store_pattern, store_anomaly, store_correlation, get_recent_data,
// search_similar_patterns, health_check), plus the feature encoder used
// to turn numeric sequences into vectors for persistence.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
)

// RetryConfig configures the adapter's exponential-backoff retry on
// transport errors.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
	}
}

func (c RetryConfig) delay(attempt int) time.Duration {
	d := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt))
	if d > float64(c.MaxDelay) {
		d = float64(c.MaxDelay)
	}
	return time.Duration(d)
}

// Client is a net/http-based implementation of domain.VectorStoreAdapter.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retry      RetryConfig
	logger     *zap.Logger
}

// NewClient constructs a Client from a domain.VectorStoreConfig. A nil
// logger falls back to a no-op logger.
func NewClient(cfg domain.VectorStoreConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retry:  DefaultRetryConfig(),
		logger: logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("vsmengine: marshal request: %w", err)
		}
		payload = data
	}

	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retry.delay(attempt - 1)):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", domain.ErrTransportTimeout, ctx.Err())
			}
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return fmt.Errorf("vsmengine: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", uuid.NewString())
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %v", domain.ErrTransportTimeout, err)
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrTransportUnavailable, err)
			c.logger.Warn("vector store request failed, retrying",
				zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		func() {
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				lastErr = fmt.Errorf("%w: status %d", domain.ErrTransportUnavailable, resp.StatusCode)
				return
			}
			if out != nil {
				if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
					lastErr = fmt.Errorf("vsmengine: decode response: %w", decodeErr)
					return
				}
			}
			lastErr = nil
		}()

		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (c *Client) store(ctx context.Context, path string, doc domain.StoreDocument) error {
	return c.do(ctx, http.MethodPost, path, doc, nil)
}

// StorePattern persists a pattern document.
func (c *Client) StorePattern(ctx context.Context, doc domain.StoreDocument) error {
	return c.store(ctx, "/store/pattern", doc)
}

// StoreAnomaly persists an anomaly document.
func (c *Client) StoreAnomaly(ctx context.Context, doc domain.StoreDocument) error {
	return c.store(ctx, "/store/anomaly", doc)
}

// StoreCorrelation persists a correlation document.
func (c *Client) StoreCorrelation(ctx context.Context, doc domain.StoreDocument) error {
	return c.store(ctx, "/store/correlation", doc)
}

// GetRecentData queries the vector store for recent documents.
func (c *Client) GetRecentData(ctx context.Context, req domain.QueryRequest) (domain.QueryResponse, error) {
	var resp domain.QueryResponse
	err := c.do(ctx, http.MethodPost, "/query", req, &resp)
	return resp, err
}

// SearchSimilarPatterns runs a nearest-neighbor search over stored
// vectors.
func (c *Client) SearchSimilarPatterns(ctx context.Context, req domain.SearchRequest) (domain.SearchResponse, error) {
	var resp domain.SearchResponse
	err := c.do(ctx, http.MethodPost, "/search", req, &resp)
	return resp, err
}

// HealthCheck reports the vector store's health.
func (c *Client) HealthCheck(ctx context.Context) (domain.HealthResponse, error) {
	var resp domain.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &resp)
	return resp, err
}

var _ domain.VectorStoreAdapter = (*Client)(nil)
