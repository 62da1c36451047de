package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// recentWindow is how many delivered event ids each connection remembers for
// duplicate suppression.
const recentWindow = 256

// Sender is the write half of a client connection. *websocket.Conn
// satisfies it.
type Sender interface {
	WriteMessage(messageType int, data []byte) error
}

// client is one registered connection plus its duplicate-suppression window
type client struct {
	send Sender
	mu   sync.Mutex
	seen map[string]struct{}
	ring []string
	next int
}

func newClient(send Sender) *client {
	return &client{
		send: send,
		seen: make(map[string]struct{}, recentWindow),
		ring: make([]string, recentWindow),
	}
}

// deliver writes the event unless this connection has already seen its id.
// An event can reach a connection twice when an optimistic direct delivery
// races the echoed pub/sub copy; the id window collapses those to one write.
// The lock spans the write itself: gorilla connections allow only one
// concurrent writer, so the same mutex that guards the window also
// serializes WriteMessage calls on this connection.
func (c *client) deliver(event *Event, log *zap.Logger) {
	data, err := event.Encode()
	if err != nil {
		log.Error("encoding bridge event", zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.seen[event.EventID]; dup {
		return
	}
	if old := c.ring[c.next]; old != "" {
		delete(c.seen, old)
	}
	c.ring[c.next] = event.EventID
	c.seen[event.EventID] = struct{}{}
	c.next = (c.next + 1) % recentWindow

	if err := c.send.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Warn("websocket write failed", zap.Error(err))
	}
}

// Hub maps user ids to their open websocket connections and fans bridge
// events out to them. One Register per connection on open, one Unregister on
// close; there is no reconnect or gap-fill on the server side.
type Hub struct {
	mu    sync.RWMutex
	conns map[uint]map[Sender]*client
	log   *zap.Logger
}

// NewHub creates an empty Hub
func NewHub(log *zap.Logger) *Hub {
	return &Hub{conns: make(map[uint]map[Sender]*client), log: log}
}

// Register adds a connection for a user
func (h *Hub) Register(userID uint, conn Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[Sender]*client)
		h.conns[userID] = m
	}
	m[conn] = newClient(conn)
}

// Unregister removes a connection for a user
func (h *Hub) Unregister(userID uint, conn Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.conns[userID]; ok {
		delete(m, conn)
		if len(m) == 0 {
			delete(h.conns, userID)
		}
	}
}

// Broadcast delivers an event to every connection of one user
func (h *Hub) Broadcast(userID uint, event *Event) {
	h.mu.RLock()
	clients := make([]*client, 0, 2)
	for _, c := range h.conns[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.deliver(event, h.log)
	}
}

// BroadcastAll delivers an event to every open connection
func (h *Hub) BroadcastAll(event *Event) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.conns))
	for _, m := range h.conns {
		for _, c := range m {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.deliver(event, h.log)
	}
}

// ConnectionCount reports how many connections a user has open
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}
