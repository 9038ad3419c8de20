package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour
	cfg.ArchiveTTL = 2 * time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := &model.Room{
		ID:        "room-1",
		Name:      "Friday",
		Settings:  model.GameSettings{PublicHands: true},
		Seed:      7,
		Status:    model.RoomStatusOpen,
		CreatedAt: time.Now().UTC(),
	}

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Equal(room.Name, retrieved.Name)
	s.Equal(room.Seed, retrieved.Seed)
	s.True(retrieved.Settings.PublicHands)
	s.True(room.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomTTL() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "room-1"})

	s.Equal(time.Hour, s.mini.TTL(roomKey("room-1")))
}

func (s *StorageSuite) TestListRoomsSkipsExpired() {
	now := time.Now()
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "b", CreatedAt: now.Add(time.Minute)})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "a", CreatedAt: now})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "gone", CreatedAt: now})
	s.mini.Del(roomKey("gone"))

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 2)
	s.Equal(model.RoomID("a"), rooms[0].ID)
	s.Equal(model.RoomID("b"), rooms[1].ID)

	members, err := s.mini.Members(roomsIndexKey())
	s.Require().NoError(err)
	s.ElementsMatch([]string{"a", "b"}, members)
}

func (s *StorageSuite) TestDeleteRoom() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "room-1"})
	_ = s.storage.RecordAction(s.ctx, "room-1", tarot.NextHandEntry(), nil)

	err := s.storage.DeleteRoom(s.ctx, "room-1")
	s.Require().NoError(err)

	_, err = s.storage.GetRoom(s.ctx, "room-1")
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.False(s.mini.Exists(logKey("room-1")))
}

// Action log tests

func (s *StorageSuite) TestLogRoundTrip() {
	entries := []tarot.LogEntry{
		tarot.ActionEntry(tarot.EnterGame("alice")),
		tarot.ActionEntry(tarot.AddToDog("alice", tarot.Joker, tarot.Card{Suit: tarot.SuitHeart, Rank: 3})),
		tarot.ActionEntry(tarot.PassBid("bob")),
		tarot.NextHandEntry(),
	}
	for _, e := range entries {
		s.Require().NoError(s.storage.RecordAction(s.ctx, "room-1", e, nil))
	}

	log, err := s.storage.GetLog(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Equal(entries, log)
	s.Equal(time.Hour, s.mini.TTL(logKey("room-1")))
}

// Event log tests

func (s *StorageSuite) TestGetDeliveriesSince() {
	var deliveries []model.Delivery
	for seq := int64(1); seq <= 4; seq++ {
		deliveries = append(deliveries, model.Delivery{
			Seq:     seq,
			RoomID:  "room-1",
			Type:    "message",
			Payload: []byte(`{"text":"hi"}`),
		})
	}
	deliveries[2].PrivateTo = "bob"
	s.Require().NoError(s.storage.AppendDeliveries(s.ctx, "room-1", deliveries))

	tail, err := s.storage.GetDeliveries(s.ctx, "room-1", 2)
	s.Require().NoError(err)
	s.Require().Len(tail, 2)
	s.Equal(int64(3), tail[0].Seq)
	s.Equal(model.PlayerID("bob"), tail[0].PrivateTo)
	s.JSONEq(`{"text":"hi"}`, string(tail[0].Payload))

	none, err := s.storage.GetDeliveries(s.ctx, "room-1", 4)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StorageSuite) TestAppendNoDeliveries() {
	s.NoError(s.storage.AppendDeliveries(s.ctx, "room-1", nil))
	s.False(s.mini.Exists(deliveriesKey("room-1")))
}

func (s *StorageSuite) TestRecordActionWritesLogAndDeliveriesTogether() {
	deliveries := []model.Delivery{
		{Seq: 1, RoomID: "room-1", Type: "player_entered", Payload: []byte(`{"player":"alice"}`)},
		{Seq: 2, RoomID: "room-1", Type: "player_ready", Payload: []byte(`{"player":"alice"}`)},
	}

	s.Require().NoError(s.storage.RecordAction(s.ctx, "room-1", tarot.ActionEntry(tarot.EnterGame("alice")), deliveries))

	log, err := s.storage.GetLog(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Len(log, 1)
	stored, err := s.storage.GetDeliveries(s.ctx, "room-1", 0)
	s.Require().NoError(err)
	s.Require().Len(stored, 2)
	s.Equal("player_ready", stored[1].Type)
	s.Equal(time.Hour, s.mini.TTL(deliveriesKey("room-1")))
}

func (s *StorageSuite) TestRecordActionWithoutDeliveries() {
	s.Require().NoError(s.storage.RecordAction(s.ctx, "room-1", tarot.NextHandEntry(), nil))

	s.True(s.mini.Exists(logKey("room-1")))
	s.False(s.mini.Exists(deliveriesKey("room-1")))
}

// Hand archive tests

func (s *StorageSuite) TestHandRecords() {
	record := &model.HandRecord{
		RoomID:     "room-1",
		HandNumber: 3,
		Bidder:     "alice",
		Partner:    "carol",
		Contract:   40,
		BidderWon:  true,
		Deltas:     map[model.PlayerID]int{"alice": 120, "carol": 60, "bob": -60, "dave": -60, "erin": -60},
		Result:     []byte(`{"total":60}`),
	}
	s.Require().NoError(s.storage.SaveHandRecord(s.ctx, record))

	records, err := s.storage.GetHandRecords(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(record.Deltas, records[0].Deltas)
	s.Equal(model.PlayerID("carol"), records[0].Partner)
	s.Equal(2*time.Hour, s.mini.TTL(handsKey("room-1")))
}
