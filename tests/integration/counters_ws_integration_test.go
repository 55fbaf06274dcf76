package integration

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voycebutler18/spilkz-sub001/internal/realtime"
)

// TestCounterBroadcast connects a real websocket client and verifies a
// counter refresh posted through the HTTP API reaches it
func TestCounterBroadcast(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := setupTestDB(t)
	seedClips(t, db)
	r, hub := setupServer(t, db)

	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws/counters"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond, "client must register with the hub")

	hub.Broadcast(&realtime.CounterUpdate{
		ClipID:       "recent-0",
		ViewCount:    120,
		LikeCount:    14,
		CommentCount: 3,
	})

	_, payload, err := conn.Read(ctx)
	require.NoError(t, err)

	var update realtime.CounterUpdate
	require.NoError(t, json.Unmarshal(payload, &update))
	assert.Equal(t, "counters", update.Type)
	assert.Equal(t, "recent-0", update.ClipID)
	assert.Equal(t, 120, update.ViewCount)
	assert.Equal(t, 14, update.LikeCount)
	assert.Equal(t, 3, update.CommentCount)
}

// TestCounterFanoutToMultipleClients verifies every connected client sees
// the same refresh
func TestCounterFanoutToMultipleClients(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := setupTestDB(t)
	seedClips(t, db)
	r, hub := setupServer(t, db)

	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws/counters"

	const n = 3
	conns := make([]*websocket.Conn, n)
	for i := 0; i < n; i++ {
		conn, _, err := websocket.Dial(ctx, wsURL, nil)
		require.NoError(t, err)
		defer conn.Close(websocket.StatusNormalClosure, "")
		conns[i] = conn
	}

	require.Eventually(t, func() bool {
		return hub.ClientCount() == n
	}, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(&realtime.CounterUpdate{ClipID: "trend-5", LikeCount: 999})

	for i, conn := range conns {
		_, payload, err := conn.Read(ctx)
		require.NoError(t, err, "client %d", i)

		var update realtime.CounterUpdate
		require.NoError(t, json.Unmarshal(payload, &update))
		assert.Equal(t, "trend-5", update.ClipID)
		assert.Equal(t, 999, update.LikeCount)
	}
}

// TestClientDisconnectLeavesHubClean verifies the hub forgets a departed
// client
func TestClientDisconnectLeavesHubClean(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := setupTestDB(t)
	r, hub := setupServer(t, db)

	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws/counters"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond, "hub must drop the closed client")
}
