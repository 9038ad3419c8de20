package tarot

import "github.com/mcoot/tarot-go2/internal/model"

// TransitionType identifies an outbound transition
type TransitionType string

const (
	TransitionNewGame               TransitionType = "new_game"
	TransitionPlayerEntered         TransitionType = "player_entered"
	TransitionPlayerReady           TransitionType = "player_ready"
	TransitionPhaseChanged          TransitionType = "phase_changed"
	TransitionBidPlaced             TransitionType = "bid_placed"
	TransitionBiddingCompleted      TransitionType = "bidding_completed"
	TransitionRedeal                TransitionType = "redeal"
	TransitionCallMade              TransitionType = "call_made"
	TransitionTrumpShown            TransitionType = "trump_shown"
	TransitionTrumpShowAcknowledged TransitionType = "trump_show_acknowledged"
	TransitionPartnerCalled         TransitionType = "partner_called"
	TransitionDogReveal             TransitionType = "dog_reveal"
	TransitionDogAcknowledged       TransitionType = "dog_acknowledged"
	TransitionDogTaken              TransitionType = "dog_taken"
	TransitionDogDiscardTrump       TransitionType = "dog_discard_trump"
	TransitionDogCompleted          TransitionType = "dog_completed"
	TransitionCardPlayed            TransitionType = "card_played"
	TransitionCompletedTrick        TransitionType = "completed_trick"
	TransitionJokerOwed             TransitionType = "joker_owed"
	TransitionJokerExchanged        TransitionType = "joker_exchanged"
	TransitionGameCompleted         TransitionType = "game_completed"
	TransitionMessage               TransitionType = "message"
	TransitionError                 TransitionType = "error"
)

// Transition is one event produced by Apply.
// PrivateTo is empty for public transitions; Player is the acting or affected player.
type Transition struct {
	Type      TransitionType
	PrivateTo model.PlayerID
	Player    model.PlayerID
	Payload   any
}

// IsPublic returns true if every room member may see the transition
func (t Transition) IsPublic() bool {
	return t.PrivateTo == ""
}

func public(typ TransitionType, player model.PlayerID, payload any) Transition {
	return Transition{Type: typ, Player: player, Payload: payload}
}

func private(typ TransitionType, to model.PlayerID, payload any) Transition {
	return Transition{Type: typ, PrivateTo: to, Player: to, Payload: payload}
}

// NewGamePayload is sent privately to each player when cards are dealt
type NewGamePayload struct {
	Hand       []Card           `json:"hand"`
	Seats      []model.PlayerID `json:"seats"`
	Dealer     model.PlayerID   `json:"dealer"`
	HandNumber int              `json:"hand_number"`
}

// PhaseChangedPayload announces the new phase and who acts first in it
type PhaseChangedPayload struct {
	Phase Phase          `json:"phase"`
	Turn  model.PlayerID `json:"turn,omitempty"`
}

// BidPlacedPayload announces a bid or pass
type BidPlacedPayload struct {
	Bid  Bid            `json:"bid"`
	Next model.PlayerID `json:"next,omitempty"`
}

// BiddingCompletedPayload announces the contract
type BiddingCompletedPayload struct {
	Bidder   model.PlayerID `json:"bidder"`
	Contract BidValue       `json:"contract"`
	Name     string         `json:"name"`
	Calls    Calls          `json:"calls"`
}

// RedealPayload announces that every player passed
type RedealPayload struct {
	Dealer     model.PlayerID `json:"dealer"`
	HandNumber int            `json:"hand_number"`
}

// CallMadePayload announces a call
type CallMadePayload struct {
	Call Call `json:"call"`
}

// TrumpShownPayload reveals a player's trumps
type TrumpShownPayload struct {
	Cards []Card    `json:"cards"`
	Level ShowLevel `json:"level"`
}

// TrumpShowAcknowledgedPayload records one acknowledgement of the pending show
type TrumpShowAcknowledgedPayload struct {
	ShownBy  model.PlayerID `json:"shown_by"`
	Complete bool           `json:"complete"`
}

// PartnerCalledPayload announces the called card
type PartnerCalledPayload struct {
	Card Card `json:"card"`
}

// DogRevealPayload shows the dog to the table
type DogRevealPayload struct {
	Dog []Card `json:"dog"`
}

// DogTakenPayload is sent privately to the bidder with the hand including the dog
type DogTakenPayload struct {
	Hand    []Card `json:"hand"`
	Discard int    `json:"discard"`
}

// DogDiscardTrumpPayload announces a trump discarded into the dog
type DogDiscardTrumpPayload struct {
	Card Card `json:"card"`
}

// DogCompletedPayload announces the start of play
type DogCompletedPayload struct {
	Leader model.PlayerID `json:"leader"`
}

// CardPlayedPayload announces a card played to the current trick
type CardPlayedPayload struct {
	Card    Card           `json:"card"`
	Next    model.PlayerID `json:"next,omitempty"`
	Partner bool           `json:"partner,omitempty"` // The card was the called card
}

// CompletedTrickPayload announces a finished trick
type CompletedTrickPayload struct {
	Trick  CompletedTrick `json:"trick"`
	Points HalfPoints     `json:"half_points"`
}

// JokerOwedPayload announces a Joker exchange debt
type JokerOwedPayload struct {
	Debtor   model.PlayerID `json:"debtor"`
	Creditor model.PlayerID `json:"creditor"`
	Trick    int            `json:"trick"`
}

// JokerExchangedPayload announces a settled debt. Forfeit is set when the debtor had no card
// to give and the Joker itself went to the creditor.
type JokerExchangedPayload struct {
	Debtor   model.PlayerID `json:"debtor"`
	Creditor model.PlayerID `json:"creditor"`
	Card     Card           `json:"card"`
	Forfeit  bool           `json:"forfeit,omitempty"`
}

// GameCompletedPayload carries the scored hand
type GameCompletedPayload struct {
	Result CompletedGameState `json:"result"`
}

// MessagePayload is a chat message
type MessagePayload struct {
	Text string `json:"text"`
}

// ErrorPayload is the private rejection sent to the acting player
type ErrorPayload struct {
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Action  ActionType `json:"action,omitempty"`
}

// RejectionFor builds the private error transition for a rejected action
func RejectionFor(action Action, err error) Transition {
	code := ErrorCode(err)
	if code == "" {
		code = "internal_error"
	}
	return private(TransitionError, action.Player, ErrorPayload{
		Code:    code,
		Message: err.Error(),
		Action:  action.Type,
	})
}
