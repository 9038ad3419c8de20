package sse

import (
	"context"
	"net/http"
	"time"

	"github.com/mcoot/tarot-go2/internal/model"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing deliveries
	sendBufferSize = 256

	// TransportSSE labels SSE clients in logs and metrics
	TransportSSE = "sse"
)

// Backlog loads the deliveries a client is entitled to with a sequence number above since
type Backlog func(ctx context.Context, since int64) ([]model.Delivery, error)

// Client is a connection receiving one room's deliveries. An empty player ID is an observer
// and only receives public deliveries.
type Client struct {
	hub         *Hub
	playerID    model.PlayerID
	transport   string
	send        chan model.Delivery
	connectedAt time.Time
}

// NewClient creates a new client for a hub
func NewClient(hub *Hub, playerID model.PlayerID, transport string) *Client {
	return &Client{
		hub:         hub,
		playerID:    playerID,
		transport:   transport,
		send:        make(chan model.Delivery, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Deliveries returns the channel the hub sends to. It is closed when the client is unregistered.
func (c *Client) Deliveries() <-chan model.Delivery {
	return c.send
}

// PlayerID returns the player the client receives deliveries for
func (c *Client) PlayerID() model.PlayerID {
	return c.playerID
}

// ServeSSE streams a room's deliveries to the client, starting with the backlog after since.
// The client is registered before the backlog is read so nothing published in between is lost;
// live deliveries already sent from the backlog are skipped.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, playerID model.PlayerID, since int64, backlog Backlog) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	client := NewClient(hub, playerID, TransportSSE)
	if !hub.Register(client) {
		http.Error(w, "Room closed", http.StatusGone)
		return
	}
	defer hub.Unregister(client)

	missed, err := backlog(r.Context(), since)
	if err != nil {
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))

	last := since
	for _, d := range missed {
		if _, err := w.Write(FormatDelivery(d)); err != nil {
			return
		}
		last = d.Seq
	}
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case d, ok := <-client.send:
			if !ok {
				// Hub closed the channel
				return
			}
			if d.Seq <= last {
				continue
			}
			if _, err := w.Write(FormatDelivery(d)); err != nil {
				return
			}
			last = d.Seq
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
