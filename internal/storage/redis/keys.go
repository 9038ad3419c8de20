package redis

import (
	"fmt"

	"github.com/mcoot/tarot-go2/internal/model"
)

// Key prefix for all tarot data
const keyPrefix = "tarot"

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomsIndexKey returns the Redis key for the SET of room IDs
func roomsIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// logKey returns the Redis key for a room's action LIST
func logKey(id model.RoomID) string {
	return fmt.Sprintf("%s:log:%s", keyPrefix, id)
}

// deliveriesKey returns the Redis key for a room's delivery LIST, ordered by sequence
func deliveriesKey(id model.RoomID) string {
	return fmt.Sprintf("%s:deliveries:%s", keyPrefix, id)
}

// handsKey returns the Redis key for a room's archived hand LIST
func handsKey(id model.RoomID) string {
	return fmt.Sprintf("%s:hands:%s", keyPrefix, id)
}
