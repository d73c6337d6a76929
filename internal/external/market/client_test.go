package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/how3io/how3-backend/pkg/config"
	"github.com/how3io/how3-backend/pkg/logger"
)

func testClient(apiURL string) *Client {
	cfg := &config.Config{LogLevel: "error", LogFormat: "console"}
	cfg.Market.BaseURL = apiURL
	return NewClient(cfg, logger.New(cfg), nil)
}

func TestMarketCapFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		assert.Equal(t, "chainlink", r.URL.Query().Get("ids"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"symbol":"link","market_cap":8400000000}]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)

	cap, err := c.MarketCap(context.Background(), "LINK", "chainlink")
	require.NoError(t, err)
	require.NotNil(t, cap)
	assert.Equal(t, 8.4e9, *cap)
}

func TestMarketCapAPIFallsBackToScrape(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer api.Close()

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><table>
			<tr><td>Market Cap</td><td>$8,400,000,000</td></tr>
		</table></body></html>`))
	}))
	defer page.Close()

	c := testClient(api.URL)
	c.scrapeURL = page.URL

	cap, err := c.MarketCap(context.Background(), "LINK", "chainlink")
	require.NoError(t, err)
	require.NotNil(t, cap)
	assert.Equal(t, 8.4e9, *cap)
}

func TestParseMarketCapDoc(t *testing.T) {
	html := `<html><body><table>
		<tr><td>Fully Diluted Market Cap</td><td>$10,000,000,000</td></tr>
		<tr><td>Market Cap</td><td>$8,400,123,456.78</td></tr>
	</table></body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	cap, err := parseMarketCapDoc(doc)
	require.NoError(t, err)
	require.NotNil(t, cap)
	assert.InDelta(t, 8400123456.78, *cap, 0.01)
}

func TestParseMarketCapDocNotFound(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body><p>nothing here</p></body></html>`))
	require.NoError(t, err)

	cap, err := parseMarketCapDoc(doc)
	assert.Error(t, err)
	assert.Nil(t, cap)
}
