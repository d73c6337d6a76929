package certik

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/how3io/how3-backend/pkg/config"
	"github.com/how3io/how3-backend/pkg/logger"
)

func testClient(baseURL, apiKey string) *Client {
	cfg := &config.Config{LogLevel: "error", LogFormat: "console"}
	cfg.Certik.BaseURL = baseURL
	cfg.Certik.APIKey = apiKey
	return NewClient(cfg, logger.New(cfg), nil)
}

func TestSafetyScoreFallbackWithoutKey(t *testing.T) {
	c := testClient("http://unused", "")

	score, err := c.SafetyScore(context.Background(), "Chainlink")
	require.NoError(t, err)
	require.NotNil(t, score)
	assert.Equal(t, 85.0, *score)
}

func TestSafetyScoreUnknownProtocolNil(t *testing.T) {
	c := testClient("http://unused", "")

	score, err := c.SafetyScore(context.Background(), "some-new-protocol")
	require.NoError(t, err)
	assert.Nil(t, score)
}

func TestSafetyScoreFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "/projects/aave", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"project":{"name":"aave","security_score":91.5}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "test-key")

	score, err := c.SafetyScore(context.Background(), "AAVE")
	require.NoError(t, err)
	require.NotNil(t, score)
	assert.Equal(t, 91.5, *score)
}

func TestSafetyScoreAPIFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := testClient(srv.URL, "bad-key")

	// Upstream failure falls back to the static table rather than erroring
	score, err := c.SafetyScore(context.Background(), "uniswap")
	require.NoError(t, err)
	require.NotNil(t, score)
	assert.Equal(t, 80.0, *score)
}
