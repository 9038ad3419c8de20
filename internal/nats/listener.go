package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/tarot"
	"github.com/mcoot/tarot-go2/internal/wire"
)

// submitTimeout bounds how long a NATS callback waits on a room
const submitTimeout = 5 * time.Second

// Submit applies an action to a room
type Submit func(ctx context.Context, roomID model.RoomID, action tarot.Action) error

// Reply is sent to the reply subject of an action request
type Reply struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ActionListener submits actions published on the rooms' action subjects
type ActionListener struct {
	conn   Conn
	submit Submit
	sub    *natsgo.Subscription
	logger *slog.Logger
}

// NewActionListener creates a new ActionListener. Call Start to subscribe.
func NewActionListener(conn Conn, submit Submit, logger *slog.Logger) *ActionListener {
	return &ActionListener{
		conn:   conn,
		submit: submit,
		logger: logger.With(slog.String("component", "nats-listener")),
	}
}

// Start subscribes to every room's action subject
func (l *ActionListener) Start() error {
	sub, err := l.conn.Subscribe(ActionsWildcard, l.handle)
	if err != nil {
		l.logger.Error("failed to subscribe", slog.String("subject", ActionsWildcard), slog.String("error", err.Error()))
		return err
	}
	l.sub = sub
	l.logger.Info("listening for actions", slog.String("subject", ActionsWildcard))
	return nil
}

// Stop unsubscribes
func (l *ActionListener) Stop() {
	if l.sub == nil {
		return
	}
	if err := l.sub.Unsubscribe(); err != nil {
		l.logger.Warn("failed to unsubscribe", slog.String("error", err.Error()))
	}
	l.sub = nil
}

func (l *ActionListener) handle(msg *natsgo.Msg) {
	roomID, ok := roomFromActionsSubject(msg.Subject)
	if !ok {
		l.respond(msg, Reply{Code: "invalid_subject", Message: msg.Subject})
		return
	}

	action, err := wire.DecodeAction(msg.Data)
	if err != nil {
		l.respond(msg, Reply{Code: "invalid_action", Message: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	if err := l.submit(ctx, roomID, action); err != nil {
		code := tarot.ErrorCode(err)
		if code == "" {
			code = "room_error"
		}
		l.logger.Debug("action from nats failed",
			slog.String("room_id", string(roomID)),
			slog.String("player_id", string(action.Player)),
			slog.String("error", err.Error()))
		l.respond(msg, Reply{Code: code, Message: err.Error()})
		return
	}
	l.respond(msg, Reply{OK: true})
}

// respond answers request-style messages; fire-and-forget publishes get nothing back
func (l *ActionListener) respond(msg *natsgo.Msg, reply Reply) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(reply)
	if err != nil {
		return
	}
	if err := l.conn.Publish(msg.Reply, data); err != nil {
		l.logger.Warn("failed to reply", slog.String("subject", msg.Reply), slog.String("error", err.Error()))
	}
}
