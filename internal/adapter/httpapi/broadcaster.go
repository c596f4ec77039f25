package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/simaogato/cpay-backend/internal/logger"
	"github.com/simaogato/cpay-backend/internal/metrics"
	"github.com/simaogato/cpay-backend/internal/usecase/ledger"
)

const writeWait = 5 * time.Second

// ChangeSource publishes a payload-free signal after every ledger mutation
type ChangeSource interface {
	Subscribe(fn func()) *ledger.Subscription
}

// ChangeMessage is the frame pushed to websocket clients
type ChangeMessage struct {
	Type string `json:"type"`
	At   int64  `json:"at"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan struct{}
}

// Broadcaster fans ledger changes out to websocket clients.
// Each client holds at most one pending change; bursts are coalesced.
type Broadcaster struct {
	log      *logger.Logger
	metrics  *metrics.LedgerMetrics
	upgrader websocket.Upgrader
	now      func() time.Time

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

// NewBroadcaster creates a broadcaster with no clients
func NewBroadcaster(log *logger.Logger, m *metrics.LedgerMetrics) *Broadcaster {
	return &Broadcaster{
		log:      log,
		metrics:  m,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		now:      time.Now,
		clients:  make(map[*wsClient]struct{}),
	}
}

// Attach subscribes the broadcaster to source
func (b *Broadcaster) Attach(source ChangeSource) *ledger.Subscription {
	return source.Subscribe(b.Notify)
}

// Notify marks every client as having a pending change. It never blocks.
func (b *Broadcaster) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for c := range b.clients {
		select {
		case c.send <- struct{}{}:
		default:
		}
	}
}

// ClientCount returns the number of connected clients
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Handler returns an http.HandlerFunc accepting websocket connections.
// The handler blocks until the client disconnects.
func (b *Broadcaster) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			b.log.Warn(ctx, "websocket upgrade failed", err)
			return
		}

		b.metrics.SubscriberAdded("ws")
		defer b.metrics.SubscriberRemoved("ws")

		c := &wsClient{conn: conn, send: make(chan struct{}, 1)}
		if !b.add(c) {
			goingAway(conn)
			return
		}
		b.log.Debug(ctx, "websocket client connected")

		go b.writeLoop(ctx, c)

		// reads only detect the close; clients have nothing to say
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		b.remove(c)
		conn.Close()
		b.log.Debug(ctx, "websocket client disconnected")
	}
}

// Close disconnects every client and rejects new ones
func (b *Broadcaster) Close() {
	b.mu.Lock()
	b.closed = true
	conns := make([]*websocket.Conn, 0, len(b.clients))
	for c := range b.clients {
		conns = append(conns, c.conn)
	}
	b.mu.Unlock()

	for _, conn := range conns {
		goingAway(conn)
	}
}

func goingAway(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
		time.Now().Add(writeWait))
	conn.Close()
}

func (b *Broadcaster) add(c *wsClient) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.clients[c] = struct{}{}
	return true
}

// remove drops the client and ends its write loop
func (b *Broadcaster) remove(c *wsClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[c]; !ok {
		return
	}
	delete(b.clients, c)
	close(c.send)
}

func (b *Broadcaster) writeLoop(ctx context.Context, c *wsClient) {
	for range c.send {
		msg := ChangeMessage{Type: "ledger_changed", At: b.now().UnixMilli()}
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			b.log.Warn(ctx, "websocket write failed", err)
			c.conn.Close()
			return
		}
	}
}
