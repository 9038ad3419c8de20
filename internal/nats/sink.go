// Package nats publishes room deliveries to NATS subjects and accepts actions from them.
package nats

import (
	"log/slog"

	natsgo "github.com/nats-io/nats.go"

	"github.com/mcoot/tarot-go2/internal/metrics"
	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/services/room"
)

// transport labels NATS in logs and metrics
const transport = "nats"

// Conn is the part of *natsgo.Conn the sink and listener use
type Conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb natsgo.MsgHandler) (*natsgo.Subscription, error)
}

var _ Conn = (*natsgo.Conn)(nil)

// Sink publishes each delivery on its room's public subject, or on the subject of the player
// it is private to.
type Sink struct {
	conn    Conn
	metrics *metrics.Metrics
	logger  *slog.Logger
}

var _ room.Sink = (*Sink)(nil)

// NewSink creates a new Sink
func NewSink(conn Conn, m *metrics.Metrics, logger *slog.Logger) *Sink {
	return &Sink{
		conn:    conn,
		metrics: m,
		logger:  logger.With(slog.String("component", "nats-sink")),
	}
}

// Publish sends d. Publishing is buffered by the NATS client, so this never blocks the room.
func (s *Sink) Publish(d model.Delivery) {
	subject := PublicSubject(d.RoomID)
	if !d.IsPublic() {
		subject = PlayerSubject(d.RoomID, d.PrivateTo)
	}
	if err := s.conn.Publish(subject, d.Payload); err != nil {
		s.metrics.DeliveryDropped(transport)
		s.logger.Warn("nats publish failed",
			slog.String("subject", subject),
			slog.Int64("seq", d.Seq),
			slog.String("error", err.Error()))
	}
}
