package model

import "time"

// RoomID uniquely identifies a room
type RoomID string

// RoomStatus represents the lifecycle state of a room
type RoomStatus string

const (
	RoomStatusOpen    RoomStatus = "open"    // Accepting actions
	RoomStatusAborted RoomStatus = "aborted" // Engine invariant failed, state frozen
	RoomStatusClosed  RoomStatus = "closed"  // Torn down between hands
)

// GameSettings selects rule variants for the games played in a room
type GameSettings struct {
	AutologEnabled       bool `json:"autologEnabled"`       // Archive each completed hand
	BakerBengtsonVariant bool `json:"bakerBengtsonVariant"` // Use the Baker-Bengtson scoring preset
	PublicHands          bool `json:"publicHands"`          // Observers may see every hand
}

// Room is the persisted record of a table of players playing consecutive hands
type Room struct {
	ID       RoomID
	Name     string
	Settings GameSettings
	Seed     uint64 // Deal seed; each hand deals from Seed+HandNumber
	Status   RoomStatus
	Bots     map[PlayerID]string // Seated bots and their strategy

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen returns true if the room accepts actions
func (r *Room) IsOpen() bool {
	return r.Status == RoomStatusOpen
}

// IsBot returns true if the player is one of the room's bots
func (r *Room) IsBot(id PlayerID) bool {
	_, ok := r.Bots[id]
	return ok
}
