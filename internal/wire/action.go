package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

// MaxMessageLength bounds chat message text in bytes
const MaxMessageLength = 500

// ErrInvalidAction is returned for malformed action envelopes
var ErrInvalidAction = errors.New("invalid action")

// DecodeAction parses an action envelope and checks the fields its type requires.
// Unknown fields are rejected.
func DecodeAction(data []byte) (tarot.Action, error) {
	a, err := decode(data)
	if err != nil {
		return tarot.Action{}, err
	}
	if err := ValidateAction(a); err != nil {
		return tarot.Action{}, err
	}
	return a, nil
}

// DecodeActionAs decodes an action submitted by player. The envelope may omit the player;
// naming anyone else is rejected.
func DecodeActionAs(data []byte, player model.PlayerID) (tarot.Action, error) {
	a, err := decode(data)
	if err != nil {
		return tarot.Action{}, err
	}
	if a.Player != "" && a.Player != player {
		return tarot.Action{}, fmt.Errorf("%w: player %q does not match the caller", ErrInvalidAction, a.Player)
	}
	a.Player = player
	if err := ValidateAction(a); err != nil {
		return tarot.Action{}, err
	}
	return a, nil
}

func decode(data []byte) (tarot.Action, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var a tarot.Action
	if err := dec.Decode(&a); err != nil {
		return tarot.Action{}, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	return a, nil
}

// ValidateAction checks that a is well formed. It says nothing about whether a is legal.
func ValidateAction(a tarot.Action) error {
	if !slices.Contains(tarot.ActionTypes, a.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAction, a.Type)
	}
	if a.Player == "" {
		return fmt.Errorf("%w: missing player", ErrInvalidAction)
	}

	switch a.Type {
	case tarot.ActionBid:
		if a.Pass == (a.Bid != 0) {
			return fmt.Errorf("%w: bid needs exactly one of bid or pass", ErrInvalidAction)
		}
		if !a.Pass && !a.Bid.IsValid() {
			return fmt.Errorf("%w: unknown bid %d", ErrInvalidAction, a.Bid)
		}
	case tarot.ActionMakeCall:
		if a.Call == "" {
			return fmt.Errorf("%w: missing call", ErrInvalidAction)
		}
	case tarot.ActionCallPartner, tarot.ActionPlayCard, tarot.ActionJokerExchange:
		if a.Card == nil {
			return fmt.Errorf("%w: missing card", ErrInvalidAction)
		}
		if !a.Card.IsValid() {
			return fmt.Errorf("%w: unknown card %v", ErrInvalidAction, *a.Card)
		}
	case tarot.ActionShowTrump, tarot.ActionAddToDog:
		if len(a.Cards) == 0 {
			return fmt.Errorf("%w: missing cards", ErrInvalidAction)
		}
		for _, c := range a.Cards {
			if !c.IsValid() {
				return fmt.Errorf("%w: unknown card %v", ErrInvalidAction, c)
			}
		}
	case tarot.ActionMessage:
		if a.Text == "" {
			return fmt.Errorf("%w: empty message", ErrInvalidAction)
		}
		if len(a.Text) > MaxMessageLength {
			return fmt.Errorf("%w: message longer than %d bytes", ErrInvalidAction, MaxMessageLength)
		}
	}
	return nil
}

// EncodeAction returns the action envelope for a
func EncodeAction(a tarot.Action) ([]byte, error) {
	return json.Marshal(a)
}
