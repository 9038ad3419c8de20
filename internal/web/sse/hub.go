package sse

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/tarot-go2/internal/metrics"
	"github.com/mcoot/tarot-go2/internal/model"
)

// Hub fans one room's deliveries out to its connected clients. Each client only receives the
// deliveries it is entitled to see.
type Hub struct {
	roomID  model.RoomID
	clients map[*Client]bool
	mu      sync.RWMutex
	metrics *metrics.Metrics
	logger  *slog.Logger

	// Channels for managing clients
	register   chan *Client
	unregister chan *Client
	broadcast  chan model.Delivery
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub for a room
func NewHub(roomID model.RoomID, m *metrics.Metrics, logger *slog.Logger) *Hub {
	return &Hub{
		roomID:     roomID,
		clients:    make(map[*Client]bool),
		metrics:    m,
		logger:     logger.With(slog.String("room_id", string(roomID))),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan model.Delivery, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("delivery hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client registered",
				slog.String("player_id", string(client.playerID)),
				slog.String("transport", client.transport),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("client unregistered",
					slog.String("player_id", string(client.playerID)),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case d := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if !d.VisibleTo(client.playerID) {
					continue
				}
				select {
				case client.send <- d:
				default:
					// The client catches up from history when it reconnects
					h.metrics.DeliveryDropped(client.transport)
					h.logger.Warn("delivery dropped - client buffer full",
						slog.String("player_id", string(client.playerID)),
						slog.Int64("seq", d.Seq))
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("delivery hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// Register adds a client to the hub. It returns false if the hub has been closed.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a delivery for every client entitled to it
func (h *Hub) Broadcast(d model.Delivery) {
	select {
	case h.broadcast <- d:
	default:
		h.metrics.DeliveryDropped("hub")
		h.logger.Warn("delivery dropped - hub buffer full", slog.Int64("seq", d.Seq))
	}
}

// Close shuts down the hub and disconnects its clients
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// FormatDelivery frames a delivery as an SSE message. The sequence number is the event id, so a
// reconnecting browser resumes from Last-Event-ID.
func FormatDelivery(d model.Delivery) []byte {
	return formatSSEMessage(strconv.FormatInt(d.Seq, 10), d.Type, string(d.Payload))
}

// formatSSEMessage formats an SSE message with an optional id and an event name.
// Multi-line data is properly formatted with "data: " prefix on each line
func formatSSEMessage(id, eventName, data string) []byte {
	var b strings.Builder
	if id != "" {
		b.WriteString("id: " + id + "\n")
	}
	b.WriteString("event: " + eventName + "\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits a string into lines, handling various line endings
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// HubManager owns the hubs for every room with connected clients
type HubManager struct {
	hubs    map[model.RoomID]*Hub
	mu      sync.RWMutex
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(m *metrics.Metrics, logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:    make(map[model.RoomID]*Hub),
		metrics: m,
		logger:  logger.With(slog.String("component", "delivery-hub")),
	}
}

// GetOrCreateHub returns the hub for a room, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(roomID model.RoomID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomID]; ok {
		return hub
	}

	hub := NewHub(roomID, m.metrics, m.logger)
	m.hubs[roomID] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(roomID model.RoomID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[roomID]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(roomID model.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomID]; ok {
		hub.Close()
		delete(m.hubs, roomID)
		m.logger.Info("delivery hub removed", slog.String("room_id", string(roomID)))
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removedCount := 0
	for id, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removedCount++
		}
	}
	if removedCount > 0 {
		m.logger.Info("empty delivery hubs cleaned up", slog.Int("removed", removedCount))
	}
}

// Close shuts down every hub
func (m *HubManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
	}
}
