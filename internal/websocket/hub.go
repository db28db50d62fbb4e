// Package websocket pushes dashboard updates to open browsers.
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	applog "bookings/internal/log"
	"bookings/internal/view"
)

const sendBuffer = 256

// Hub maintains the set of active clients and broadcasts updates to them.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu     sync.RWMutex
	logger *applog.Logger
}

func NewHub(logger *applog.Logger) *Hub {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.WithComponent(applog.ComponentWebSocket),
	}
}

// Run is the hub's event loop. It returns when ctx is done, closing every
// client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("Client connected", applog.FieldClientID, c.ID, applog.FieldCount, n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("Client disconnected", applog.FieldClientID, c.ID, applog.FieldCount, n)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer; it reconnects and reloads the page.
					delete(h.clients, c)
					close(c.send)
					h.logger.Warn("Dropped slow client", applog.FieldClientID, c.ID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues u for every connected client. A full queue drops the
// update.
func (h *Hub) Broadcast(u view.Update) {
	msg, err := json.Marshal(u)
	if err != nil {
		h.logger.Error("Encode update failed", applog.FieldError, err, applog.FieldRegion, u.Target)
		return
	}
	h.BroadcastRaw(msg)
}

// BroadcastRaw queues an already encoded message.
func (h *Hub) BroadcastRaw(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("Broadcast queue full, dropping update")
	}
}

// Register adds c. After Run has returned c's channel is closed instead.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client is one browser connection.
type Client struct {
	ID   string
	hub  *Hub
	send chan []byte
}

func NewClient(hub *Hub) *Client {
	return &Client{
		ID:   uuid.NewString(),
		hub:  hub,
		send: make(chan []byte, sendBuffer),
	}
}

// Send is the channel the hub writes this client's messages to. It is
// closed when the client is dropped.
func (c *Client) Send() <-chan []byte {
	return c.send
}
