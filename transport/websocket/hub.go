package websocket

import (
	"log/slog"
	"sync"
)

// Hub tracks live connections by id and delivers outbound events to them.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "ws_hub"),
		clients: make(map[string]*client),
	}
}

// Notify queues an event for connID. Unknown ids are ignored, and a client whose
// buffer is full loses the event instead of blocking the room.
func (that *Hub) Notify(connID, action string, payload any) {
	log := that.logger.With("method", "Notify", "connID", connID, "action", action)

	msg, err := encode(action, payload)
	if err != nil {
		log.Error("failed to encode event", "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	c, ok := that.clients[connID]
	if !ok {
		return
	}

	if !c.enqueue(msg) {
		log.Warn("send buffer full, event dropped")
	}
}

func (that *Hub) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.clients)
}

func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.clients[c.id] = c
}

func (that *Hub) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.clients[c.id] != c {
		return
	}

	delete(that.clients, c.id)
	c.closeSend()
}

func (that *Hub) closeAll() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for id, c := range that.clients {
		c.closeSend()
		delete(that.clients, id)
	}
}
