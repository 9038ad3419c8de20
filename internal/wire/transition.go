package wire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

// Envelope holds the routing fields of a transition envelope.
// Raw is the complete envelope, payload fields included.
type Envelope struct {
	Type      tarot.TransitionType `json:"type"`
	Seq       int64                `json:"seq"`
	PrivateTo model.PlayerID       `json:"private_to,omitempty"`
	Player    model.PlayerID       `json:"player,omitempty"`
	Raw       json.RawMessage      `json:"-"`
}

// EncodeTransition flattens t into one JSON object: the routing fields followed by the
// fields of its payload.
func EncodeTransition(seq int64, t tarot.Transition) (json.RawMessage, error) {
	fields := map[string]any{}
	if t.Payload != nil {
		data, err := json.Marshal(t.Payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s payload: %w", t.Type, err)
		}
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("%s payload is not an object: %w", t.Type, err)
		}
		for k, v := range payload {
			fields[k] = v
		}
	}

	fields["type"] = t.Type
	fields["seq"] = seq
	if t.PrivateTo != "" {
		fields["private_to"] = t.PrivateTo
	}
	if t.Player != "" {
		fields["player"] = t.Player
	}
	return json.Marshal(fields)
}

// DecodeEnvelope reads the routing fields of an encoded transition
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("envelope has no type")
	}
	env.Raw = append(json.RawMessage(nil), data...)
	return env, nil
}

// DecodePayload unmarshals the payload fields of env into v
func (env Envelope) DecodePayload(v any) error {
	return json.Unmarshal(env.Raw, v)
}

// NewDelivery encodes t as the delivery numbered seq
func NewDelivery(roomID model.RoomID, seq int64, t tarot.Transition, at time.Time) (model.Delivery, error) {
	payload, err := EncodeTransition(seq, t)
	if err != nil {
		return model.Delivery{}, err
	}
	return model.Delivery{
		Seq:       seq,
		RoomID:    roomID,
		Type:      string(t.Type),
		PrivateTo: t.PrivateTo,
		Payload:   payload,
		Timestamp: at,
	}, nil
}
