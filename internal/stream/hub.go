// Package stream renders panel snapshots to WebSocket clients and accepts
// button presses from them.
package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/types"
)

const (
	defaultSendBuf      = 16
	defaultBroadcastBuf = 64

	panelStateType = "panel_state"
)

// envelope is the wire format of every outbound frame.
type envelope struct {
	Type string           `json:"type"`
	Ts   time.Time        `json:"ts"`
	Data types.PanelState `json:"data"`
}

// Hub tracks connected clients and fans snapshots out to them. A client whose
// queue is full is disconnected.
type Hub struct {
	log *log.Logger

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu      sync.Mutex
	clients map[*Client]struct{}
	last    []byte

	sendBuf int
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		log:        logger,
		broadcast:  make(chan []byte, defaultBroadcastBuf),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
		sendBuf:    defaultSendBuf,
	}
}

// Run processes hub events until ctx is cancelled, then disconnects everyone.
// It must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			last := h.last
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Info("Stream client %s connected (%d clients)", c.remoteAddr, n)
			if last != nil {
				h.deliver(c, last)
			}

		case c := <-h.unregister:
			h.removeClient(c, "unregister")

		case msg := <-h.broadcast:
			h.mu.Lock()
			targets := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				targets = append(targets, c)
			}
			h.mu.Unlock()

			for _, c := range targets {
				h.deliver(c, msg)
			}
		}
	}
}

func (h *Hub) deliver(c *Client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		h.removeClient(c, "slow client")
	}
}

// Render queues a snapshot for every client and remembers it for clients that
// connect later.
func (h *Hub) Render(state types.PanelState) {
	msg, err := json.Marshal(envelope{Type: panelStateType, Ts: time.Now().UTC(), Data: state})
	if err != nil {
		h.log.Error("Failed to marshal panel state: %v", err)
		return
	}

	h.mu.Lock()
	h.last = msg
	h.mu.Unlock()

	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("Stream broadcast queue full, dropping panel state")
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.conn != nil {
			_ = c.conn.Close()
		}
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) removeClient(c *Client, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	close(c.send)
	h.log.Info("Stream client %s disconnected: %s (%d clients)", c.remoteAddr, reason, n)
}
