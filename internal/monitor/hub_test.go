package monitor

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	first := Sample{Sim: "flood", Step: 1, Volume: 2.5, Gauges: []Gauge{{X: 3, Y: 4, Depth: 0.25}}}
	hub.Broadcast(first)

	conn := dial(t, srv)
	var got Sample
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, first, got)

	waitFor(t, func() bool { return hub.Clients() == 1 })
	next := Sample{Sim: "flood", Step: 2, Wet: true}
	hub.Broadcast(next)
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, 2, got.Step)
	assert.True(t, got.Wet)
	assert.Nil(t, got.Gauges)
}

func TestHubPauseControl(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(map[string]bool{"paused": true}))
	waitFor(t, hub.Paused)

	require.NoError(t, conn.WriteJSON(map[string]bool{"paused": false}))
	waitFor(t, func() bool { return !hub.Paused() })

	conn.Close()
	waitFor(t, func() bool { return hub.Clients() == 0 })
}
