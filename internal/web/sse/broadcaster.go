package sse

import (
	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/services/room"
)

// Broadcaster publishes room deliveries to the hub of the room they belong to.
// Rooms nobody is listening to have no hub and their deliveries are skipped.
type Broadcaster struct {
	hubManager *HubManager
}

var _ room.Sink = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager) *Broadcaster {
	return &Broadcaster{hubManager: hubManager}
}

// Publish routes d to its room's hub
func (b *Broadcaster) Publish(d model.Delivery) {
	hub := b.hubManager.GetHub(d.RoomID)
	if hub == nil {
		return
	}
	hub.Broadcast(d)
}
