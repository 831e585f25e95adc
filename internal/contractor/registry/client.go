package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"pankas/internal/contractor/metrics"
	"pankas/pkg/platform/sentinel"
)

const (
	sourceCompanies = "companies"
	sourceLicenses  = "licenses"

	// The upstream caps datastore_search at 100 rows by default; a single
	// contractor rarely has more than a few dozen activity rows.
	fetchLimit = 200
)

// Config carries the knobs for the CKAN client.
type Config struct {
	// BaseURL of the datastore_search action, e.g.
	// https://data.gov.il/api/3/action/datastore_search
	BaseURL string
	// CompaniesResource and LicensesResource are the CKAN resource ids of
	// the two datasets.
	CompaniesResource string
	LicensesResource  string
	// Timeout bounds each individual registry call. The upstream has no
	// SLA; an unbounded wait would stall the whole reconciliation.
	Timeout time.Duration
	// MaxRetries caps additional attempts after the first. Retries apply
	// to transport errors and 5xx only, never to empty result sets.
	MaxRetries uint64
}

// Client queries both registries over HTTP with per-call timeouts,
// bounded jittered retries, and an optional raw-row cache in front.
type Client struct {
	cfg     Config
	httpc   *http.Client
	cache   RowCache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures optional collaborators.
type Option func(*Client)

// WithRowCache installs a cache for raw rows, keyed per (registry, id).
func WithRowCache(cache RowCache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithMetrics installs fetch observability.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient builds a registry client. logger must be non-nil.
func NewClient(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := &Client{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Companies(ctx context.Context, companyID string) ([]RawRecord, error) {
	return c.fetch(ctx, sourceCompanies, c.cfg.CompaniesResource, companyID)
}

func (c *Client) Licenses(ctx context.Context, companyID string) ([]RawRecord, error) {
	return c.fetch(ctx, sourceLicenses, c.cfg.LicensesResource, companyID)
}

// datastoreResponse is the CKAN envelope around query results.
type datastoreResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Records []RawRecord `json:"records"`
	} `json:"result"`
}

func (c *Client) fetch(ctx context.Context, source, resource, companyID string) ([]RawRecord, error) {
	if c.cache != nil && !bypassRequested(ctx) {
		if rows, err := c.cache.Find(ctx, source, companyID); err == nil {
			c.metrics.RecordRowCacheHit(source)
			return rows, nil
		}
		c.metrics.RecordRowCacheMiss(source)
	}

	start := time.Now()
	rows, err := c.fetchWithRetry(ctx, source, resource, companyID)
	c.metrics.ObserveFetch(source, time.Since(start))
	if err != nil {
		c.metrics.RecordFetchFailure(source)
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Save(ctx, source, companyID, rows); err != nil {
			c.logger.WarnContext(ctx, "row cache save failed",
				"registry", source, "company_id", companyID, "error", err)
		}
	}
	return rows, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, source, resource, companyID string) ([]RawRecord, error) {
	var rows []RawRecord
	operation := func() error {
		var err error
		rows, err = c.fetchOnce(ctx, resource, companyID)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.cfg.MaxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "registry fetch retrying",
			"registry", source, "company_id", companyID, "wait", wait, "error", err)
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, fmt.Errorf("%s registry: %w: %w", source, sentinel.ErrUnavailable, err)
	}
	return rows, nil
}

func (c *Client) fetchOnce(ctx context.Context, resource, companyID string) ([]RawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	query := url.Values{}
	query.Set("resource_id", resource)
	query.Set("q", companyID)
	query.Set("limit", fmt.Sprint(fetchLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		// 4xx will not get better on retry.
		return nil, backoff.Permanent(fmt.Errorf("upstream status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var parsed datastoreResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	if !parsed.Success {
		return nil, backoff.Permanent(fmt.Errorf("upstream reported failure"))
	}
	// Zero records is success: the entity simply is not listed.
	return parsed.Result.Records, nil
}
