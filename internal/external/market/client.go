// Package market fetches token market capitalizations. The primary path is
// the CoinGecko JSON API; when it is unavailable or rate limited, the client
// degrades to scraping the public listing page.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/how3io/how3-backend/pkg/config"
	"github.com/how3io/how3-backend/pkg/httputil"
	"github.com/how3io/how3-backend/pkg/logger"
	"github.com/how3io/how3-backend/pkg/redis"
)

// Client fetches market caps with an HTML scrape fallback
type Client struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	logger     *logger.Logger
	baseURL    string
	scrapeURL  string
}

// NewClient creates a new market data client. cache may be nil.
func NewClient(cfg *config.Config, log *logger.Logger, cache *redis.Cache) *Client {
	return &Client{
		httpClient: httputil.NewWithTimeout(cfg, log, 15*time.Second),
		cache:      cache,
		logger:     log,
		baseURL:    cfg.Market.BaseURL,
		scrapeURL:  "https://www.coingecko.com/en/coins",
	}
}

type coinMarket struct {
	Symbol    string   `json:"symbol"`
	MarketCap *float64 `json:"market_cap"`
}

// MarketCap returns the current market cap in USD for a token. symbol is the
// ticker ("LINK"), slug the listing page identifier ("chainlink"). Returns
// nil when neither the API nor the scrape fallback can produce a value.
func (c *Client) MarketCap(ctx context.Context, symbol, slug string) (*float64, error) {
	if c.cache != nil {
		var cap float64
		if found, err := c.cache.Get(ctx, redis.MarketCapKey(symbol), &cap); err == nil && found {
			return &cap, nil
		}
	}

	cap, err := c.fetchJSON(ctx, symbol, slug)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"error":  err.Error(),
		}).Warn("Market cap API failed, trying page scrape")
		cap, err = c.scrape(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("market cap for %s: %w", symbol, err)
		}
	}

	if cap != nil && c.cache != nil {
		if err := c.cache.Set(ctx, redis.MarketCapKey(symbol), *cap, redis.TTLShort); err != nil {
			c.logger.WithError(err).Warn("Failed to cache market cap")
		}
	}
	return cap, nil
}

// fetchJSON queries the coins/markets endpoint
func (c *Client) fetchJSON(ctx context.Context, symbol, slug string) (*float64, error) {
	url := fmt.Sprintf("%s/coins/markets?vs_currency=usd&ids=%s", c.baseURL, slug)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var coins []coinMarket
	if err := json.NewDecoder(resp.Body).Decode(&coins); err != nil {
		return nil, err
	}

	for _, coin := range coins {
		if coin.MarketCap != nil && *coin.MarketCap > 0 {
			return coin.MarketCap, nil
		}
	}
	return nil, nil
}

// scrape loads the public listing page and extracts the market cap figure
func (c *Client) scrape(ctx context.Context, slug string) (*float64, error) {
	url := fmt.Sprintf("%s/%s", c.scrapeURL, slug)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("scrape status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseMarketCapDoc(doc)
}

var usdAmountRe = regexp.MustCompile(`\$[\d,]+(?:\.\d+)?`)

// parseMarketCapDoc finds the stats row labeled "Market Cap" and parses its
// dollar amount.
func parseMarketCapDoc(doc *goquery.Document) (*float64, error) {
	var cap *float64

	doc.Find("tr, div[data-stat], li").EachWithBreak(func(i int, row *goquery.Selection) bool {
		text := row.Text()
		if !strings.Contains(text, "Market Cap") || strings.Contains(text, "Fully Diluted") {
			return true
		}

		amount := usdAmountRe.FindString(text)
		if amount == "" {
			return true
		}

		cleaned := strings.ReplaceAll(strings.TrimPrefix(amount, "$"), ",", "")
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || v <= 0 {
			return true
		}

		cap = &v
		return false
	})

	if cap == nil {
		return nil, fmt.Errorf("market cap not found in page")
	}
	return cap, nil
}
