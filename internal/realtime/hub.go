// Package realtime fans engagement-counter refreshes out to connected feed
// clients. Counters are advisory display state refreshed out-of-band, so
// delivery is best-effort: slow clients are dropped rather than buffered
// without bound.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/voycebutler18/spilkz-sub001/internal/logger"
	"go.uber.org/zap"
)

// CounterUpdate is a counters message broadcast to feed clients
type CounterUpdate struct {
	Type         string `json:"type"` // always "counters"
	ClipID       string `json:"clip_id"`
	ViewCount    int    `json:"view_count"`
	LikeCount    int    `json:"like_count"`
	CommentCount int    `json:"comment_count"`
}

// Hub maintains the set of connected clients and broadcasts counter updates
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *CounterUpdate

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHub creates a hub; call Run to start it
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan *CounterUpdate, 256),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run processes registrations and broadcasts until Stop is called
func (h *Hub) Run() {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-h.ctx.Done():
				h.closeAll()
				return
			case client := <-h.register:
				h.mu.Lock()
				h.clients[client] = struct{}{}
				h.mu.Unlock()
			case client := <-h.unregister:
				h.removeClient(client)
			case update := <-h.broadcast:
				h.fanout(update)
			}
		}
	}()
}

// Stop shuts the hub down and closes all client connections
func (h *Hub) Stop() {
	h.cancel()
	h.wg.Wait()
}

// Broadcast queues a counter update for all connected clients.
// Never blocks; under backpressure the update is dropped.
func (h *Hub) Broadcast(update *CounterUpdate) {
	update.Type = "counters"
	select {
	case h.broadcast <- update:
	default:
		logger.Log.Warn("Counter broadcast dropped, hub backlogged",
			zap.String("clip_id", update.ClipID))
	}
}

// ClientCount reports the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) fanout(update *CounterUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		logger.Log.Error("Failed to encode counter update", zap.Error(err))
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- payload:
		default:
			// Slow client; drop it rather than stall the fanout.
			h.removeClient(client)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
	}
	h.mu.Unlock()

	if ok {
		client.close()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
}
