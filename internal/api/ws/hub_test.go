package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/how3io/how3-backend/internal/contracts"
	"github.com/how3io/how3-backend/pkg/config"
	"github.com/how3io/how3-backend/pkg/logger"
)

func testHub() *Hub {
	cfg := &config.Config{LogLevel: "error", LogFormat: "console"}
	return NewHub(logger.New(cfg))
}

func TestHubBroadcast(t *testing.T) {
	hub := testHub()

	server := httptest.NewServer(http.HandlerFunc(hub.HandleSubscribe))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/scores"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Wait for the hub to register the client
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	record := &contracts.ScoreRecord{
		ProtocolID: 1,
		ComputedAt: time.Now().UTC(),
		How3:       contracts.FloatPtr(59.3),
	}
	hub.PublishScore(record)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got contracts.ScoreRecord
	require.NoError(t, conn.ReadJSON(&got))

	assert.Equal(t, int64(1), got.ProtocolID)
	require.NotNil(t, got.How3)
	assert.Equal(t, 59.3, *got.How3)
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub := testHub()

	server := httptest.NewServer(http.HandlerFunc(hub.HandleSubscribe))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/scores"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubPublishWithoutClients(t *testing.T) {
	hub := testHub()

	// Must not block or panic with nobody listening
	hub.PublishScore(&contracts.ScoreRecord{ProtocolID: 1})
	assert.Equal(t, 0, hub.ClientCount())
}
