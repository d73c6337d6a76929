// Package dune pulls protocol revenue and user activity tables from Dune
// Analytics. Query execution is asynchronous: the client submits an
// execution, polls its status with exponential backoff, and caches the
// result rows in Redis so repeated scoring passes within the TTL do not
// re-run expensive queries.
package dune

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/how3io/how3-backend/pkg/config"
	"github.com/how3io/how3-backend/pkg/httputil"
	"github.com/how3io/how3-backend/pkg/logger"
	"github.com/how3io/how3-backend/pkg/redis"
)

// Client handles communication with the Dune Analytics API
type Client struct {
	httpClient   *httputil.Client
	cache        *redis.Cache
	limiter      *rate.Limiter
	logger       *logger.Logger
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	pollTimeout  time.Duration
	cacheTTL     time.Duration
}

// NewClient creates a new Dune API client. cache may be nil, in which case
// every call executes the query remotely.
func NewClient(cfg *config.Config, log *logger.Logger, cache *redis.Cache) *Client {
	return &Client{
		httpClient:   httputil.NewWithTimeout(cfg, log, 60*time.Second),
		cache:        cache,
		limiter:      rate.NewLimiter(rate.Limit(cfg.Dune.RatePerSec), 1),
		logger:       log,
		apiKey:       cfg.Dune.APIKey,
		baseURL:      cfg.Dune.BaseURL,
		pollInterval: cfg.Dune.PollInterval,
		pollTimeout:  cfg.Dune.PollTimeout,
		cacheTTL:     cfg.Dune.CacheTTL,
	}
}

type executeResponse struct {
	ExecutionID string `json:"execution_id"`
	State       string `json:"state"`
}

type statusResponse struct {
	ExecutionID string `json:"execution_id"`
	State       string `json:"state"`
}

type resultsResponse struct {
	ExecutionID string `json:"execution_id"`
	State       string `json:"state"`
	Result      struct {
		Rows []map[string]any `json:"rows"`
	} `json:"result"`
}

const (
	stateCompleted = "QUERY_STATE_COMPLETED"
	stateFailed    = "QUERY_STATE_FAILED"
	stateCancelled = "QUERY_STATE_CANCELLED"
)

// RunQuery executes a saved Dune query and returns its result rows.
// Cached results are served without touching the API.
func (c *Client) RunQuery(ctx context.Context, queryID int64) ([]map[string]any, error) {
	if rows, ok := c.cachedRows(ctx, queryID); ok {
		c.logger.WithFields(map[string]interface{}{
			"query_id": queryID,
			"rows":     len(rows),
		}).Debug("Dune result served from cache")
		return rows, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	executionID, err := c.execute(ctx, queryID)
	if err != nil {
		return nil, fmt.Errorf("dune execute query %d: %w", queryID, err)
	}

	if err := c.waitForCompletion(ctx, executionID); err != nil {
		return nil, fmt.Errorf("dune execution %s: %w", executionID, err)
	}

	rows, err := c.results(ctx, executionID)
	if err != nil {
		return nil, fmt.Errorf("dune results %s: %w", executionID, err)
	}

	c.storeRows(ctx, queryID, rows)

	c.logger.WithFields(map[string]interface{}{
		"query_id":     queryID,
		"execution_id": executionID,
		"rows":         len(rows),
	}).Info("Dune query completed")

	return rows, nil
}

// execute submits an asynchronous query execution
func (c *Client) execute(ctx context.Context, queryID int64) (string, error) {
	url := fmt.Sprintf("%s/query/%d/execute", c.baseURL, queryID)

	resp, err := c.doJSON(ctx, http.MethodPost, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var exec executeResponse
	if err := json.NewDecoder(resp.Body).Decode(&exec); err != nil {
		return "", err
	}
	if exec.ExecutionID == "" {
		return "", fmt.Errorf("empty execution id")
	}
	return exec.ExecutionID, nil
}

// waitForCompletion polls the execution status until it settles
func (c *Client) waitForCompletion(ctx context.Context, executionID string) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.pollInterval
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = c.pollTimeout

	operation := func() error {
		url := fmt.Sprintf("%s/execution/%s/status", c.baseURL, executionID)

		resp, err := c.doJSON(ctx, http.MethodGet, url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		var status statusResponse
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			return err
		}

		switch status.State {
		case stateCompleted:
			return nil
		case stateFailed, stateCancelled:
			return backoff.Permanent(fmt.Errorf("execution ended in state %s", status.State))
		default:
			return fmt.Errorf("execution still in state %s", status.State)
		}
	}

	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}

// results fetches the rows of a completed execution
func (c *Client) results(ctx context.Context, executionID string) ([]map[string]any, error) {
	url := fmt.Sprintf("%s/execution/%s/results", c.baseURL, executionID)

	resp, err := c.doJSON(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var res resultsResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return res.Result.Rows, nil
}

func (c *Client) doJSON(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Dune-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

func (c *Client) cachedRows(ctx context.Context, queryID int64) ([]map[string]any, bool) {
	if c.cache == nil {
		return nil, false
	}

	var rows []map[string]any
	found, err := c.cache.Get(ctx, redis.DuneResultKey(queryID), &rows)
	if err != nil || !found {
		return nil, false
	}
	return rows, true
}

func (c *Client) storeRows(ctx context.Context, queryID int64, rows []map[string]any) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, redis.DuneResultKey(queryID), rows, c.cacheTTL); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"query_id": queryID,
			"error":    err.Error(),
		}).Warn("Failed to cache Dune result")
	}
}
