package model

import (
	"encoding/json"
	"time"
)

// Delivery is one numbered transition as sent to clients.
// Payload holds the encoded wire envelope; PrivateTo is empty for public deliveries.
type Delivery struct {
	Seq       int64
	RoomID    RoomID
	Type      string
	PrivateTo PlayerID
	Payload   json.RawMessage
	Timestamp time.Time
}

// IsPublic returns true if every room member may see the delivery
func (d Delivery) IsPublic() bool {
	return d.PrivateTo == ""
}

// VisibleTo returns true if viewer is entitled to the delivery
func (d Delivery) VisibleTo(viewer PlayerID) bool {
	return d.PrivateTo == "" || d.PrivateTo == viewer
}
