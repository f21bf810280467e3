package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"sales-analytics/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
	DefaultPageSize    = 100
)

// Fetcher materializes the external product catalog.
type Fetcher interface {
	// FetchAll retrieves the full catalog snapshot.
	FetchAll(ctx context.Context) ([]domain.CatalogEntry, error)
}

// HTTPClient fetches the product catalog from a paged JSON API
// (GET <base>/products?limit=N&skip=M).
type HTTPClient struct {
	baseURL     string
	client      *http.Client
	pageSize    int
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts per page.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithPageSize sets the page size for catalog paging.
func WithPageSize(n int) ClientOption {
	return func(c *HTTPClient) {
		c.pageSize = n
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a catalog client for the given base URL.
func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: DefaultTimeout},
		pageSize:    DefaultPageSize,
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// productsPage is one page of the catalog API response.
type productsPage struct {
	Products []struct {
		Title    string  `json:"title"`
		Category string  `json:"category"`
		Brand    string  `json:"brand"`
		Rating   float64 `json:"rating"`
	} `json:"products"`
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// FetchAll pages through the catalog and returns every entry.
// Any unrecoverable failure is returned as an error; the pipeline
// treats that as "catalog unavailable" and degrades to all-unmatched.
func (c *HTTPClient) FetchAll(ctx context.Context) ([]domain.CatalogEntry, error) {
	var entries []domain.CatalogEntry

	skip := 0
	for {
		page, err := c.fetchPage(ctx, skip)
		if err != nil {
			return nil, err
		}

		for _, p := range page.Products {
			entries = append(entries, domain.CatalogEntry{
				Name:     p.Title,
				Category: p.Category,
				Brand:    p.Brand,
				Rating:   p.Rating,
			})
		}

		skip += len(page.Products)
		if len(page.Products) == 0 || skip >= page.Total {
			break
		}
	}

	return entries, nil
}

// fetchPage performs one paged GET with retries and exponential backoff.
func (c *HTTPClient) fetchPage(ctx context.Context, skip int) (*productsPage, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	u = u.JoinPath("products")
	q := u.Query()
	q.Set("limit", fmt.Sprintf("%d", c.pageSize))
	q.Set("skip", fmt.Sprintf("%d", skip))
	u.RawQuery = q.Encode()

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("catalog responded %d", resp.StatusCode)
			// Client errors will not improve on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, lastErr
			}
			continue
		}

		var page productsPage
		if err := json.Unmarshal(body, &page); err != nil {
			lastErr = fmt.Errorf("decode catalog page: %w", err)
			continue
		}
		return &page, nil
	}

	return nil, fmt.Errorf("fetch catalog page after %d attempts: %w", c.maxRetries+1, lastErr)
}

// Verify interface compliance at compile time.
var _ Fetcher = (*HTTPClient)(nil)
