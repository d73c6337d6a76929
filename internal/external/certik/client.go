// Package certik fetches protocol safety scores from the CertiK Skynet API.
// The safety score is computed externally; this client only retrieves and
// caches it. Without an API key the client falls back to a static table of
// last known scores so development environments still score end to end.
package certik

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/how3io/how3-backend/pkg/config"
	"github.com/how3io/how3-backend/pkg/httputil"
	"github.com/how3io/how3-backend/pkg/logger"
	"github.com/how3io/how3-backend/pkg/redis"
)

// Client implements contracts.SafetyScoreProvider against CertiK Skynet
type Client struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	logger     *logger.Logger
	apiKey     string
	baseURL    string
}

// NewClient creates a new CertiK client. cache may be nil.
func NewClient(cfg *config.Config, log *logger.Logger, cache *redis.Cache) *Client {
	return &Client{
		httpClient: httputil.NewWithTimeout(cfg, log, 15*time.Second),
		cache:      cache,
		logger:     log,
		apiKey:     cfg.Certik.APIKey,
		baseURL:    cfg.Certik.BaseURL,
	}
}

type projectResponse struct {
	Project struct {
		Name        string   `json:"name"`
		SkynetScore *float64 `json:"security_score"`
	} `json:"project"`
}

// fallbackScores holds last known Skynet scores for development use
var fallbackScores = map[string]float64{
	"chainlink": 85,
	"uniswap":   80,
	"aave":      82,
	"compound":  78,
	"maker":     81,
	"curve":     76,
	"lido":      79,
}

// SafetyScore returns the safety score for a protocol, nil when CertiK has
// no score for it. Never returns an error that should abort a scoring pass;
// upstream failures degrade to the fallback table.
func (c *Client) SafetyScore(ctx context.Context, protocolName string) (*float64, error) {
	name := strings.ToLower(protocolName)

	if c.cache != nil {
		var score float64
		if found, err := c.cache.Get(ctx, redis.SafetyScoreKey(name), &score); err == nil && found {
			return &score, nil
		}
	}

	if c.apiKey == "" {
		return c.fallback(name), nil
	}

	score, err := c.fetch(ctx, name)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"protocol": name,
			"error":    err.Error(),
		}).Warn("CertiK fetch failed, using fallback score")
		return c.fallback(name), nil
	}

	if score != nil && c.cache != nil {
		if err := c.cache.Set(ctx, redis.SafetyScoreKey(name), *score, redis.TTLMedium); err != nil {
			c.logger.WithFields(map[string]interface{}{
				"protocol": name,
				"error":    err.Error(),
			}).Warn("Failed to cache safety score")
		}
	}
	return score, nil
}

func (c *Client) fetch(ctx context.Context, name string) (*float64, error) {
	url := fmt.Sprintf("%s/projects/%s", c.baseURL, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var proj projectResponse
	if err := json.NewDecoder(resp.Body).Decode(&proj); err != nil {
		return nil, err
	}
	return proj.Project.SkynetScore, nil
}

func (c *Client) fallback(name string) *float64 {
	if score, ok := fallbackScores[name]; ok {
		return &score
	}
	return nil
}
