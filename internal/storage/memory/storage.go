package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/storage"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms      map[model.RoomID]*model.Room
	logs       map[model.RoomID][]tarot.LogEntry
	deliveries map[model.RoomID][]model.Delivery
	hands      map[model.RoomID][]*model.HandRecord
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:      make(map[model.RoomID]*model.Room),
		logs:       make(map[model.RoomID][]tarot.LogEntry),
		deliveries: make(map[model.RoomID][]model.Delivery),
		hands:      make(map[model.RoomID][]*model.HandRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *room
	s.rooms[room.ID] = &stored
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	result := *room
	return &result, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		r := *room
		rooms = append(rooms, &r)
	}
	slices.SortFunc(rooms, func(a, b *model.Room) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return rooms, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	delete(s.logs, id)
	delete(s.deliveries, id)
	delete(s.hands, id)
	return nil
}

// Action log operations

func (s *Storage) RecordAction(ctx context.Context, id model.RoomID, entry tarot.LogEntry, deliveries []model.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.Action != nil {
		a := *entry.Action
		a.Cards = slices.Clone(a.Cards)
		entry.Action = &a
	}
	s.logs[id] = append(s.logs[id], entry)
	s.deliveries[id] = append(s.deliveries[id], deliveries...)
	return nil
}

func (s *Storage) GetLog(ctx context.Context, id model.RoomID) ([]tarot.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.logs[id]), nil
}

// Event log operations

func (s *Storage) AppendDeliveries(ctx context.Context, id model.RoomID, deliveries []model.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries[id] = append(s.deliveries[id], deliveries...)
	return nil
}

func (s *Storage) GetDeliveries(ctx context.Context, id model.RoomID, sinceSeq int64) ([]model.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.deliveries[id]
	i, _ := slices.BinarySearchFunc(all, sinceSeq+1, func(d model.Delivery, seq int64) int {
		switch {
		case d.Seq < seq:
			return -1
		case d.Seq > seq:
			return 1
		default:
			return 0
		}
	})
	return slices.Clone(all[i:]), nil
}

// Hand archive operations

func (s *Storage) SaveHandRecord(ctx context.Context, record *model.HandRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *record
	s.hands[record.RoomID] = append(s.hands[record.RoomID], &stored)
	return nil
}

func (s *Storage) GetHandRecords(ctx context.Context, id model.RoomID) ([]*model.HandRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]*model.HandRecord, len(s.hands[id]))
	for i, r := range s.hands[id] {
		record := *r
		records[i] = &record
	}
	return records, nil
}
