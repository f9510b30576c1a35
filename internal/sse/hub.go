package sse

import (
	"context"
	"sync"

	"notifysync/internal/model"
)

// Client is one SSE subscriber of a notification source.
type Client struct {
	Source string
	Ch     chan model.Alert
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan model.Alert
	sources    map[string]map[*Client]struct{}
	mu         sync.RWMutex

	// done is closed when Run returns.
	done     chan struct{}
	stopOnce sync.Once
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan model.Alert, 64),
		sources:    make(map[string]map[*Client]struct{}),
		done:       make(chan struct{}),
	}
}

// Register and Unregister return immediately once Run has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues alert for every client of alert.Source. It never blocks
// the caller once the queue is full; the alert is dropped instead.
func (h *Hub) Broadcast(alert model.Alert) bool {
	select {
	case h.broadcast <- alert:
		return true
	default:
		return false
	}
}

func (h *Hub) Subscribers(source string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sources[source])
}

func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case alert := <-h.broadcast:
			h.broadcastToSource(alert)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sources[client.Source] == nil {
		h.sources[client.Source] = make(map[*Client]struct{})
	}
	h.sources[client.Source][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.sources[client.Source]
	if clients == nil {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.sources, client.Source)
	}
}

func (h *Hub) broadcastToSource(alert model.Alert) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.sources[alert.Source] {
		select {
		case client.Ch <- alert:
		default:
			// Drop if the client is too slow.
		}
	}
}
