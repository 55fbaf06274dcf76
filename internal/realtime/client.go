package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/voycebutler18/spilkz-sub001/internal/logger"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

// Client is one websocket feed consumer
type Client struct {
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, 32),
		done: make(chan struct{}),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
	})
}

// writePump delivers queued updates until the client closes
func (c *Client) writePump(ctx context.Context) {
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			c.close()
			return
		case payload := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				c.close()
				return
			}
		}
	}
}

// readPump discards inbound frames; it exists to notice the peer closing
func (c *Client) readPump(ctx context.Context, hub *Hub) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			select {
			case hub.unregister <- c:
			default:
				hub.removeClient(c)
			}
			return
		}
	}
}

// ServeWS upgrades a request and attaches the client to the hub
// GET /ws/counters
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Log.Warn("WebSocket upgrade failed", zap.Error(err))
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		client := newClient(conn)
		select {
		case hub.register <- client:
		default:
			client.close()
			return
		}

		// The request context dies when this handler returns, so the pumps
		// run on their own context and the handler blocks on the read side
		// until the peer goes away.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go client.writePump(ctx)
		client.readPump(ctx, hub)
	}
}
