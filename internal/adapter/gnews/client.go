// Package gnews fetches articles from a GNews-style search API.
package gnews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/valleywatch/news-threat-etl/internal/domain"
)

// Config holds the search request parameters.
type Config struct {
	APIKey     string
	Query      string
	Lang       string
	Country    string
	MaxResults int
	Timeout    time.Duration
}

// Client fetches articles from the search endpoint. One bounded request per
// Fetch call: no pagination, no retries — a failed fetch degrades to an
// empty batch upstream.
type Client struct {
	cfg        Config
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a search API client with an explicit request timeout.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: "https://gnews.io/api/v4",
		logger:  logger,
	}
}

// Name identifies the source in logs and metrics.
func (c *Client) Name() string { return "gnews" }

// Fetch runs one search request and returns the normalized articles.
func (c *Client) Fetch(ctx context.Context) ([]domain.Article, error) {
	params := url.Values{
		"q":      {c.cfg.Query},
		"lang":   {c.cfg.Lang},
		"max":    {fmt.Sprintf("%d", c.cfg.MaxResults)},
		"apikey": {c.cfg.APIKey},
	}
	if c.cfg.Country != "" {
		params.Set("country", c.cfg.Country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("news API error: status %d: %s", resp.StatusCode, body)
	}

	var searchResp response
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	articles := make([]domain.Article, 0, len(searchResp.Articles))
	for _, raw := range searchResp.Articles {
		articles = append(articles, domain.FormatArticle(raw))
	}
	c.logger.Debug("fetched articles", "source", c.Name(), "count", len(articles))
	return articles, nil
}

// Search API response envelope.

type response struct {
	TotalArticles int                 `json:"totalArticles"`
	Articles      []domain.RawArticle `json:"articles"`
}
