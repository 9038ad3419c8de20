// Package ws serves a room over a WebSocket: deliveries go out as wire envelopes, actions come in
// as wire action envelopes for the connected player.
package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/tarot"
	"github.com/mcoot/tarot-go2/internal/web/sse"
	"github.com/mcoot/tarot-go2/internal/wire"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size
	maxMessageSize = 4096

	// TransportWebSocket labels WebSocket clients in logs and metrics
	TransportWebSocket = "ws"
)

// Submit applies an action to the room the connection belongs to
type Submit func(ctx context.Context, action tarot.Action) error

// Upgrader accepts connections from any origin; identity is an opaque header, not a cookie
var Upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// conn is one upgraded connection
type conn struct {
	ws       *websocket.Conn
	client   *sse.Client
	playerID model.PlayerID
	submit   Submit
	logger   *slog.Logger

	// Frames for this connection only, such as malformed action errors
	local chan []byte
}

// Serve upgrades the request and runs the connection until either side closes it. The backlog
// after since is written first, then live deliveries from hub.
func Serve(
	w http.ResponseWriter,
	r *http.Request,
	hub *sse.Hub,
	playerID model.PlayerID,
	since int64,
	backlog sse.Backlog,
	submit Submit,
	logger *slog.Logger,
) {
	wsConn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error
		logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := sse.NewClient(hub, playerID, TransportWebSocket)
	if !hub.Register(client) {
		_ = wsConn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "room closed"),
			time.Now().Add(writeWait))
		_ = wsConn.Close()
		return
	}

	c := &conn{
		ws:       wsConn,
		client:   client,
		playerID: playerID,
		submit:   submit,
		logger:   logger.With(slog.String("player_id", string(playerID))),
		local:    make(chan []byte, 16),
	}

	missed, err := backlog(r.Context(), since)
	if err != nil {
		c.logger.Error("failed to load history", slog.String("error", err.Error()))
		hub.Unregister(client)
		_ = wsConn.Close()
		return
	}

	go c.writePump(hub, since, missed)
	c.readPump(hub)
}

// readPump decodes inbound actions and submits them in order. It owns unregistering the client.
func (c *conn) readPump(hub *sse.Hub) {
	defer func() {
		hub.Unregister(c.client)
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", slog.String("error", err.Error()))
			}
			return
		}
		c.handle(message)
	}
}

func (c *conn) handle(message []byte) {
	if c.playerID == "" {
		c.reply("player_required", "observers cannot send actions")
		return
	}

	action, err := wire.DecodeActionAs(message, c.playerID)
	if err != nil {
		c.reply("invalid_action", err.Error())
		return
	}

	err = c.submit(context.Background(), action)
	switch {
	case err == nil:
	case tarot.ErrorCode(err) != "" && !tarot.IsInvariant(err):
		// Rejections reach the player as a private error delivery
	default:
		c.reply(roomErrorCode(err), err.Error())
	}
}

// reply queues an error frame for this connection only. Frames carry seq 0 since they are not
// part of the room's delivery sequence.
func (c *conn) reply(code, message string) {
	frame, err := wire.EncodeTransition(0, tarot.Transition{
		Type:      tarot.TransitionError,
		PrivateTo: c.playerID,
		Player:    c.playerID,
		Payload:   tarot.ErrorPayload{Code: code, Message: message},
	})
	if err != nil {
		c.logger.Error("failed to encode error frame", slog.String("error", err.Error()))
		return
	}
	select {
	case c.local <- frame:
	default:
		c.logger.Warn("error frame dropped - buffer full", slog.String("code", code))
	}
}

func (c *conn) writePump(hub *sse.Hub, since int64, missed []model.Delivery) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	last := since
	for _, d := range missed {
		if err := c.write(websocket.TextMessage, d.Payload); err != nil {
			return
		}
		last = d.Seq
	}

	deliveries := c.client.Deliveries()
	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				// Hub closed the channel
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			if d.Seq <= last {
				continue
			}
			if err := c.write(websocket.TextMessage, d.Payload); err != nil {
				return
			}
			last = d.Seq

		case frame := <-c.local:
			if err := c.write(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *conn) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(messageType, data)
}

func roomErrorCode(err error) string {
	switch {
	case errors.Is(err, model.ErrRoomAborted):
		return "room_aborted"
	case errors.Is(err, model.ErrRoomClosed):
		return "room_closed"
	case errors.Is(err, model.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "internal_error"
	}
}
