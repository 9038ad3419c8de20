package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/tarot-go2/internal/api/middleware"
	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/services/room"
	"github.com/mcoot/tarot-go2/internal/tarot"
	"github.com/mcoot/tarot-go2/internal/web/sse"
	"github.com/mcoot/tarot-go2/internal/web/ws"
)

// Events handles GET /api/v1/rooms/{id}/events as a server-sent event stream. Reconnecting
// clients resume from Last-Event-ID, or from the since query parameter.
func (h *RoomHandler) Events(w http.ResponseWriter, r *http.Request) {
	since := r.Header.Get("Last-Event-ID")
	if since == "" {
		since = r.URL.Query().Get("since")
	}
	cursor, err := parseSince(since)
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
	hub := h.hubs.GetOrCreateHub(rm.ID())
	sse.ServeSSE(w, r, hub, viewer, cursor, backlogFor(rm, viewer))
}

// WebSocket handles GET /api/v1/rooms/{id}/ws. Frames sent by the client are actions for the
// connected player.
func (h *RoomHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	cursor, err := parseSince(r.URL.Query().Get("since"))
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
	hub := h.hubs.GetOrCreateHub(rm.ID())
	submit := func(ctx context.Context, action tarot.Action) error {
		if _, err := rm.Submit(ctx, action); err != nil {
			return err
		}
		h.processBotActions(ctx, rm.ID())
		return nil
	}
	ws.Serve(w, r, hub, viewer, cursor, backlogFor(rm, viewer), submit, h.logger)
}

func backlogFor(rm *room.Room, viewer model.PlayerID) sse.Backlog {
	return func(ctx context.Context, since int64) ([]model.Delivery, error) {
		return rm.History(ctx, viewer, since)
	}
}

