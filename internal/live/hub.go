// Package live pushes per-user events to websocket subscribers.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gofinance/internal/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Upgrade switches r to the websocket protocol.
func Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return upgrader.Upgrade(w, r, nil)
}

// Event is the envelope written to subscribers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type message struct {
	userID string
	body   []byte
}

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub owns the subscriber sets. Register, unregister and broadcast are
// serialised through its run loop; slow clients are dropped instead of
// blocking the others.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*client]struct{}

	register   chan *client
	unregister chan *client
	broadcast  chan message
	done       chan struct{}

	logger *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Discard()
	}
	return &Hub{
		clients:    make(map[string]map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan message, 64),
		done:       make(chan struct{}),
		logger:     logger.WithComponent(log.ComponentLive),
	}
}

// Run processes hub events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[c.userID]
			if !ok {
				set = make(map[*client]struct{})
				h.clients[c.userID] = set
			}
			set[c] = struct{}{}
			n := len(set)
			h.mu.Unlock()
			h.logger.Debug("Live client connected", log.FieldUserID, c.userID, log.FieldCount, n)
		case c := <-h.unregister:
			h.remove(c)
		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients[m.userID] {
				select {
				case c.send <- m.body:
				default:
					h.removeLocked(c)
					h.logger.Warn("Dropping slow live client", log.FieldUserID, c.userID)
				}
			}
			h.mu.Unlock()
		case <-ctx.Done():
			h.mu.Lock()
			for _, set := range h.clients {
				for c := range set {
					h.removeLocked(c)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// Notify queues an event for every subscriber of userID. It never blocks
// the caller once the hub has stopped.
func (h *Hub) Notify(userID, event string, payload any) {
	body, err := json.Marshal(Event{Type: event, Data: payload})
	if err != nil {
		h.logger.Error("Failed to encode live event", log.FieldError, err, "event", event)
		return
	}
	select {
	case h.broadcast <- message{userID: userID, body: body}:
	case <-h.done:
	}
}

// Subscribers returns the number of open connections of userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// Serve attaches conn to userID, writes first (if not nil) and blocks until
// the connection ends. The connection is closed on return.
func (h *Hub) Serve(conn *websocket.Conn, userID string, first *Event) {
	c := &client{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}

	if first != nil {
		body, err := json.Marshal(first)
		if err == nil {
			c.send <- body
		}
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump()

	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// readPump discards client input; it exists to notice closes and pongs.
func (c *client) readPump() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case body, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, body); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
