package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/tarot-go2/internal/api/middleware"
	"github.com/mcoot/tarot-go2/internal/api/request"
	"github.com/mcoot/tarot-go2/internal/api/response"
	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/services/bot"
	"github.com/mcoot/tarot-go2/internal/services/room"
	"github.com/mcoot/tarot-go2/internal/web/sse"
	"github.com/mcoot/tarot-go2/internal/wire"
)

// maxActionBytes bounds action request bodies
const maxActionBytes = 16 << 10

// RoomHandler handles room endpoints
type RoomHandler struct {
	rooms      *room.Manager
	botService *bot.Service
	hubs       *sse.HubManager
	logger     *slog.Logger
}

// NewRoomHandler creates a new room handler. botService may be nil.
func NewRoomHandler(rooms *room.Manager, botService *bot.Service, hubs *sse.HubManager, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		rooms:      rooms,
		botService: botService,
		hubs:       hubs,
		logger:     logger,
	}
}

func roomID(r *http.Request) model.RoomID {
	return model.RoomID(mux.Vars(r)["id"])
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, invalidBody())
		return
	}

	rm, err := h.rooms.CreateRoom(r.Context(), req.Name, req.GameSettings)
	if err != nil {
		WriteError(w, err)
		return
	}

	snap, err := rm.Snapshot(r.Context(), "")
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.RoomFromModel(&snap.Room))
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomListFromModel(rooms))
}

// Get handles GET /api/v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromModel(&snap.Room))
}

// Close handles DELETE /api/v1/rooms/{id}
func (h *RoomHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.rooms.CloseRoom(r.Context(), roomID(r)); err != nil {
		WriteError(w, err)
		return
	}
	h.hubs.RemoveHub(roomID(r))
	response.NoContent(w)
}

// State handles GET /api/v1/rooms/{id}/state
func (h *RoomHandler) State(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomStateFromSnapshot(snap))
}

// Act handles POST /api/v1/rooms/{id}/actions
func (h *RoomHandler) Act(w http.ResponseWriter, r *http.Request) {
	player, err := middleware.RequirePlayerID(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxActionBytes))
	if err != nil {
		WriteError(w, invalidBody())
		return
	}
	action, err := wire.DecodeActionAs(body, player)
	if err != nil {
		WriteError(w, err)
		return
	}

	rm, err := h.rooms.GetRoom(r.Context(), roomID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	deliveries, err := rm.Submit(r.Context(), action)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.processBotActions(r.Context(), rm.ID())

	response.JSON(w, http.StatusOK, response.DeliveriesVisibleTo(deliveries, player))
}

// History handles GET /api/v1/rooms/{id}/history?since=N
func (h *RoomHandler) History(w http.ResponseWriter, r *http.Request) {
	since, err := parseSince(r.URL.Query().Get("since"))
	if err != nil {
		WriteError(w, err)
		return
	}

	rm, err := h.rooms.GetRoom(r.Context(), roomID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	viewer := middleware.GetPlayerID(r.Context())
	deliveries, err := rm.History(r.Context(), viewer, since)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.DeliveriesVisibleTo(deliveries, viewer))
}

// NextHand handles POST /api/v1/rooms/{id}/next-hand
func (h *RoomHandler) NextHand(w http.ResponseWriter, r *http.Request) {
	player, err := middleware.RequirePlayerID(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	rm, err := h.rooms.GetRoom(r.Context(), roomID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	deliveries, err := rm.NextHand(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	h.processBotActions(r.Context(), rm.ID())

	response.JSON(w, http.StatusOK, response.DeliveriesVisibleTo(deliveries, player))
}

// Hands handles GET /api/v1/rooms/{id}/hands
func (h *RoomHandler) Hands(w http.ResponseWriter, r *http.Request) {
	records, err := h.hands(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.HandsFromModel(records))
}

// Hand handles GET /api/v1/rooms/{id}/hands/{number}
func (h *RoomHandler) Hand(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(mux.Vars(r)["number"])
	if err != nil {
		WriteError(w, invalidRequest("hand number must be an integer"))
		return
	}

	records, err := h.hands(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	for _, rec := range records {
		if rec.HandNumber == number {
			response.JSON(w, http.StatusOK, response.HandRecordFromModel(rec))
			return
		}
	}
	WriteError(w, model.ErrHandNotFound)
}

// AddBot handles POST /api/v1/rooms/{id}/bots
func (h *RoomHandler) AddBot(w http.ResponseWriter, r *http.Request) {
	if h.botService == nil {
		WriteError(w, invalidRequest("bots are not available"))
		return
	}

	var req request.AddBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		WriteError(w, invalidBody())
		return
	}
	strategy := req.Strategy
	if strategy == "" {
		strategy = model.BotStrategyRandom
	}

	id, err := h.botService.AddBot(r.Context(), roomID(r), strategy)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.processBotActions(r.Context(), roomID(r))

	response.JSON(w, http.StatusCreated, response.BotAdded{PlayerID: string(id), Strategy: strategy})
}

// Strategies handles GET /api/v1/bots/strategies
func (h *RoomHandler) Strategies(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.StrategiesFromModel())
}

func (h *RoomHandler) snapshot(r *http.Request) (room.Snapshot, error) {
	rm, err := h.rooms.GetRoom(r.Context(), roomID(r))
	if err != nil {
		return room.Snapshot{}, err
	}
	return rm.Snapshot(r.Context(), middleware.GetPlayerID(r.Context()))
}

func (h *RoomHandler) hands(r *http.Request) ([]*model.HandRecord, error) {
	rm, err := h.rooms.GetRoom(r.Context(), roomID(r))
	if err != nil {
		return nil, err
	}
	return rm.Hands(r.Context())
}

// processBotActions lets the room's bots take every move that is theirs. Failures are logged:
// the caller's own action has already succeeded.
func (h *RoomHandler) processBotActions(ctx context.Context, id model.RoomID) {
	if h.botService == nil {
		return
	}
	if _, err := h.botService.ProcessBotActions(ctx, id); err != nil {
		h.logger.Error("failed to process bot actions",
			slog.String("room_id", string(id)),
			slog.String("error", err.Error()),
		)
	}
}

// parseSince parses a delivery sequence cursor; empty means from the start
func parseSince(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	since, err := strconv.ParseInt(s, 10, 64)
	if err != nil || since < 0 {
		return 0, invalidRequest("since must be a non-negative integer")
	}
	return since, nil
}

