// Package ner calls an external entity-recognition service that extracts
// typed spans from free text. The service is optional: when it is not
// configured the resolver falls back to its default-pool tier.
package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/valleywatch/news-threat-etl/internal/domain"
	"github.com/valleywatch/news-threat-etl/internal/observability"
)

// Client implements domain.Recognizer against the recognition service's
// HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a recognition client with an explicit request timeout.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Extract posts the text and returns the typed spans the service found.
func (c *Client) Extract(ctx context.Context, text string) ([]domain.Entity, error) {
	payload, err := json.Marshal(request{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/entities", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.NERDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.NERRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("entity extraction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.NERRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("recognition service error: status %d: %s", resp.StatusCode, body)
	}

	var extractResp response
	if err := json.NewDecoder(resp.Body).Decode(&extractResp); err != nil {
		c.metrics.NERRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(extractResp.Entities) == 0 {
		c.metrics.NERRequests.WithLabelValues("empty").Inc()
		return nil, nil
	}
	c.metrics.NERRequests.WithLabelValues("success").Inc()
	return extractResp.Entities, nil
}

// Recognition service request/response types.

type request struct {
	Text string `json:"text"`
}

type response struct {
	Entities []domain.Entity `json:"entities"`
}
