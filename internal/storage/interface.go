package storage

import (
	"context"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error

	// Action log operations. The log replays to the room's current state. RecordAction stores
	// an entry together with the deliveries it produced: both are written or neither is.
	RecordAction(ctx context.Context, id model.RoomID, entry tarot.LogEntry, deliveries []model.Delivery) error
	GetLog(ctx context.Context, id model.RoomID) ([]tarot.LogEntry, error)

	// Event log operations. Deliveries are stored in sequence order. AppendDeliveries is for
	// deliveries that change no state, such as rejections.
	AppendDeliveries(ctx context.Context, id model.RoomID, deliveries []model.Delivery) error
	GetDeliveries(ctx context.Context, id model.RoomID, sinceSeq int64) ([]model.Delivery, error)

	// Hand archive operations
	SaveHandRecord(ctx context.Context, record *model.HandRecord) error
	GetHandRecords(ctx context.Context, id model.RoomID) ([]*model.HandRecord, error)
}
