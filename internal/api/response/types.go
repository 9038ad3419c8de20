package response

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/services/room"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

// Bot represents a seated bot
type Bot struct {
	PlayerID string `json:"player_id"`
	Strategy string `json:"strategy"`
	Name     string `json:"name"`
}

// Room represents a room in API responses
type Room struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Status       string             `json:"status"`
	GameSettings model.GameSettings `json:"gameSettings"`
	Bots         []Bot              `json:"bots,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// RoomFromModel converts a model.Room
func RoomFromModel(r *model.Room) Room {
	bots := make([]Bot, 0, len(r.Bots))
	for id, strategy := range r.Bots {
		bots = append(bots, Bot{
			PlayerID: string(id),
			Strategy: strategy,
			Name:     model.BotStrategyDisplayName(strategy),
		})
	}
	sort.Slice(bots, func(i, j int) bool { return bots[i].PlayerID < bots[j].PlayerID })

	return Room{
		ID:           string(r.ID),
		Name:         r.Name,
		Status:       string(r.Status),
		GameSettings: r.Settings,
		Bots:         bots,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// RoomList is the response for listing rooms
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// RoomListFromModel converts a list of rooms
func RoomListFromModel(rooms []*model.Room) RoomList {
	out := make([]Room, len(rooms))
	for i, r := range rooms {
		out[i] = RoomFromModel(r)
	}
	return RoomList{Rooms: out}
}

// RoomState is a room together with the caller's view of the current hand
type RoomState struct {
	Room    Room             `json:"room"`
	View    tarot.PlayerView `json:"view"`
	LastSeq int64            `json:"last_seq"`
}

// RoomStateFromSnapshot converts a room snapshot
func RoomStateFromSnapshot(s room.Snapshot) RoomState {
	return RoomState{
		Room:    RoomFromModel(&s.Room),
		View:    s.View,
		LastSeq: s.LastSeq,
	}
}

// Delivery is one numbered event. Event is the wire transition envelope.
type Delivery struct {
	Seq       int64           `json:"seq"`
	Type      string          `json:"type"`
	PrivateTo string          `json:"private_to,omitempty"`
	Event     json.RawMessage `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
}

// DeliveryFromModel converts a model.Delivery
func DeliveryFromModel(d model.Delivery) Delivery {
	return Delivery{
		Seq:       d.Seq,
		Type:      d.Type,
		PrivateTo: string(d.PrivateTo),
		Event:     d.Payload,
		Timestamp: d.Timestamp,
	}
}

// Deliveries is the response for endpoints returning events
type Deliveries struct {
	Deliveries []Delivery `json:"deliveries"`
}

// DeliveriesVisibleTo converts the deliveries viewer may see
func DeliveriesVisibleTo(ds []model.Delivery, viewer model.PlayerID) Deliveries {
	out := make([]Delivery, 0, len(ds))
	for _, d := range ds {
		if d.VisibleTo(viewer) {
			out = append(out, DeliveryFromModel(d))
		}
	}
	return Deliveries{Deliveries: out}
}

// HandRecord is an archived hand
type HandRecord struct {
	HandNumber  int             `json:"hand_number"`
	Bidder      string          `json:"bidder"`
	Partner     string          `json:"partner,omitempty"`
	Contract    int             `json:"contract"`
	BidderWon   bool            `json:"bidder_won"`
	Deltas      map[string]int  `json:"deltas"`
	Result      json.RawMessage `json:"result,omitempty"`
	CompletedAt time.Time       `json:"completed_at"`
}

// HandRecordFromModel converts a model.HandRecord
func HandRecordFromModel(h *model.HandRecord) HandRecord {
	return HandRecord{
		HandNumber:  h.HandNumber,
		Bidder:      string(h.Bidder),
		Partner:     string(h.Partner),
		Contract:    h.Contract,
		BidderWon:   h.BidderWon,
		Deltas:      playerMap(h.Deltas),
		Result:      h.Result,
		CompletedAt: h.CompletedAt,
	}
}

// Hands is the archived ledger of a room with running totals
type Hands struct {
	Hands  []HandRecord   `json:"hands"`
	Totals map[string]int `json:"totals"`
}

// HandsFromModel converts the archive of a room
func HandsFromModel(records []*model.HandRecord) Hands {
	hands := make([]HandRecord, len(records))
	for i, h := range records {
		hands[i] = HandRecordFromModel(h)
	}
	return Hands{Hands: hands, Totals: playerMap(model.Totals(records))}
}

// BotAdded is the response for seating a bot
type BotAdded struct {
	PlayerID string `json:"player_id"`
	Strategy string `json:"strategy"`
}

// Strategies lists the available bot strategies
type Strategies struct {
	Strategies []Bot `json:"strategies"`
}

// StrategiesFromModel lists every built-in bot strategy
func StrategiesFromModel() Strategies {
	var out []Bot
	for _, s := range model.ValidBotStrategies() {
		out = append(out, Bot{Strategy: s, Name: model.BotStrategyDisplayName(s)})
	}
	return Strategies{Strategies: out}
}

func playerMap(m map[model.PlayerID]int) map[string]int {
	out := make(map[string]int, len(m))
	for p, v := range m {
		out[string(p)] = v
	}
	return out
}
