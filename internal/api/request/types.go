package request

import "github.com/mcoot/tarot-go2/internal/model"

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Name         string             `json:"name"`
	GameSettings model.GameSettings `json:"gameSettings"`
}

// AddBotRequest is the request body for seating a bot in a room
type AddBotRequest struct {
	Strategy string `json:"strategy,omitempty"`
}
