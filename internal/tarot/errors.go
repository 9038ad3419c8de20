package tarot

import (
	"errors"
	"fmt"
)

// Action rejections. The state is left unchanged whenever Apply returns one of these.
var (
	ErrActionAlreadyHappened   = errors.New("action already happened")
	ErrTooManyPlayers          = errors.New("too many players")
	ErrPlayerNotInGame         = errors.New("player not in game")
	ErrOutOfTurn               = errors.New("out of turn")
	ErrIllegalBid              = errors.New("illegal bid")
	ErrIllegalCardPlay         = errors.New("illegal card play")
	ErrIllegalDogDiscard       = errors.New("illegal dog discard")
	ErrInvalidPhaseAction      = errors.New("action not valid in this phase")
	ErrIllegalCall             = errors.New("illegal call")
	ErrIllegalPartnerCall      = errors.New("illegal partner call")
	ErrIllegalShow             = errors.New("illegal trump show")
	ErrAwaitingAcknowledgement = errors.New("awaiting trump show acknowledgement")
	ErrIllegalExchange         = errors.New("illegal joker exchange")
	ErrCardNotInHand           = errors.New("card not in hand")
)

// InvariantError reports corrupted engine state. It is never a player mistake
// and the room owning the state must stop.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "invariant violated: " + e.Msg
}

func invariantf(format string, args ...any) error {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}

// IsInvariant reports whether err is, or wraps, an InvariantError
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrActionAlreadyHappened, "action_already_happened"},
	{ErrTooManyPlayers, "too_many_players"},
	{ErrPlayerNotInGame, "player_not_in_game"},
	{ErrOutOfTurn, "out_of_turn"},
	{ErrIllegalBid, "illegal_bid"},
	{ErrIllegalCardPlay, "illegal_card_play"},
	{ErrIllegalDogDiscard, "illegal_dog_discard"},
	{ErrInvalidPhaseAction, "invalid_phase_action"},
	{ErrIllegalCall, "illegal_call"},
	{ErrIllegalPartnerCall, "illegal_partner_call"},
	{ErrIllegalShow, "illegal_show"},
	{ErrAwaitingAcknowledgement, "awaiting_acknowledgement"},
	{ErrIllegalExchange, "illegal_exchange"},
	{ErrCardNotInHand, "card_not_in_hand"},
}

// ErrorCode returns the stable wire code for an engine error, or "" if err is not one
func ErrorCode(err error) string {
	if IsInvariant(err) {
		return "invariant_violation"
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ""
}
