package redis

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/storage"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, roomKey(room.ID), data, s.cfg.RoomTTL)
	pipe.SAdd(ctx, roomsIndexKey(), string(room.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	ids, err := s.client.SMembers(ctx, roomsIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.Room{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = roomKey(model.RoomID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	rooms := make([]*model.Room, 0, len(values))
	var expired []any
	for i, val := range values {
		if val == nil {
			expired = append(expired, ids[i])
			continue
		}
		var room model.Room
		if err := json.Unmarshal([]byte(val.(string)), &room); err != nil {
			continue // Skip invalid data
		}
		rooms = append(rooms, &room)
	}
	if len(expired) > 0 {
		s.client.SRem(ctx, roomsIndexKey(), expired...)
	}

	sortRooms(rooms)
	return rooms, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, roomKey(id), logKey(id), deliveriesKey(id), handsKey(id))
	pipe.SRem(ctx, roomsIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

// Action log operations

// RecordAction appends the entry and its deliveries in one MULTI/EXEC transaction
func (s *Storage) RecordAction(ctx context.Context, id model.RoomID, entry tarot.LogEntry, deliveries []model.Delivery) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	members, err := encodeDeliveries(deliveries)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, logKey(id), data)
	pipe.Expire(ctx, logKey(id), s.cfg.RoomTTL) // Keep log TTL in sync with the room
	if len(members) > 0 {
		pipe.RPush(ctx, deliveriesKey(id), members...)
		pipe.Expire(ctx, deliveriesKey(id), s.cfg.RoomTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetLog(ctx context.Context, id model.RoomID) ([]tarot.LogEntry, error) {
	values, err := s.client.LRange(ctx, logKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]tarot.LogEntry, 0, len(values))
	for _, val := range values {
		var entry tarot.LogEntry
		if err := json.Unmarshal([]byte(val), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Event log operations

func (s *Storage) AppendDeliveries(ctx context.Context, id model.RoomID, deliveries []model.Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}
	members, err := encodeDeliveries(deliveries)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, deliveriesKey(id), members...)
	pipe.Expire(ctx, deliveriesKey(id), s.cfg.RoomTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func encodeDeliveries(deliveries []model.Delivery) ([]any, error) {
	members := make([]any, len(deliveries))
	for i, d := range deliveries {
		data, err := json.Marshal(d)
		if err != nil {
			return nil, err
		}
		members[i] = data
	}
	return members, nil
}

// GetDeliveries returns the deliveries after sinceSeq. Sequence numbers start at 1 and are
// contiguous, so the delivery with sequence n sits at list index n-1.
func (s *Storage) GetDeliveries(ctx context.Context, id model.RoomID, sinceSeq int64) ([]model.Delivery, error) {
	if sinceSeq < 0 {
		sinceSeq = 0
	}
	values, err := s.client.LRange(ctx, deliveriesKey(id), sinceSeq, -1).Result()
	if err != nil {
		return nil, err
	}

	deliveries := make([]model.Delivery, 0, len(values))
	for _, val := range values {
		var d model.Delivery
		if err := json.Unmarshal([]byte(val), &d); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

// Hand archive operations

func (s *Storage) SaveHandRecord(ctx context.Context, record *model.HandRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	key := handsKey(record.RoomID)
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.cfg.ArchiveTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetHandRecords(ctx context.Context, id model.RoomID) ([]*model.HandRecord, error) {
	values, err := s.client.LRange(ctx, handsKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*model.HandRecord, 0, len(values))
	for _, val := range values {
		var record model.HandRecord
		if err := json.Unmarshal([]byte(val), &record); err != nil {
			continue // Skip invalid data
		}
		records = append(records, &record)
	}
	return records, nil
}

func sortRooms(rooms []*model.Room) {
	slices.SortFunc(rooms, func(a, b *model.Room) int { return a.CreatedAt.Compare(b.CreatedAt) })
}
