package tarot

import "github.com/mcoot/tarot-go2/internal/model"

// ActionType identifies a player action
type ActionType string

const (
	ActionEnterGame     ActionType = "enter_game"
	ActionPlayerReady   ActionType = "player_ready"
	ActionBid           ActionType = "bid"
	ActionShowTrump     ActionType = "show_trump"
	ActionAckTrumpShow  ActionType = "ack_trump_show"
	ActionCallPartner   ActionType = "call_partner"
	ActionMakeCall      ActionType = "make_call"
	ActionAckDog        ActionType = "ack_dog"
	ActionTakeDog       ActionType = "take_dog"
	ActionAddToDog      ActionType = "add_to_dog"
	ActionPlayCard      ActionType = "play_card"
	ActionMessage       ActionType = "message"
	ActionJokerExchange ActionType = "joker_exchange"
)

// ActionTypes lists every action type
var ActionTypes = []ActionType{
	ActionEnterGame, ActionPlayerReady, ActionBid, ActionShowTrump, ActionAckTrumpShow,
	ActionCallPartner, ActionMakeCall, ActionAckDog, ActionTakeDog, ActionAddToDog,
	ActionPlayCard, ActionMessage, ActionJokerExchange,
}

// Action is one player action. Only the fields used by Type are set.
type Action struct {
	Type   ActionType     `json:"type"`
	Player model.PlayerID `json:"player"`

	Bid   BidValue `json:"bid,omitempty"`   // bid
	Pass  bool     `json:"pass,omitempty"`  // bid
	Call  Call     `json:"call,omitempty"`  // make_call
	Card  *Card    `json:"card,omitempty"`  // call_partner, play_card, joker_exchange
	Cards []Card   `json:"cards,omitempty"` // show_trump, add_to_dog
	Text  string   `json:"text,omitempty"`  // message
}

// EnterGame returns an enter_game action
func EnterGame(p model.PlayerID) Action {
	return Action{Type: ActionEnterGame, Player: p}
}

// PlayerReady returns a player_ready action
func PlayerReady(p model.PlayerID) Action {
	return Action{Type: ActionPlayerReady, Player: p}
}

// PlaceBid returns a bid action raising to value
func PlaceBid(p model.PlayerID, value BidValue) Action {
	return Action{Type: ActionBid, Player: p, Bid: value}
}

// PassBid returns a bid action passing
func PassBid(p model.PlayerID) Action {
	return Action{Type: ActionBid, Player: p, Pass: true}
}

// ShowTrump returns a show_trump action
func ShowTrump(p model.PlayerID, cards []Card) Action {
	return Action{Type: ActionShowTrump, Player: p, Cards: cards}
}

// AckTrumpShow returns an ack_trump_show action
func AckTrumpShow(p model.PlayerID) Action {
	return Action{Type: ActionAckTrumpShow, Player: p}
}

// CallPartner returns a call_partner action
func CallPartner(p model.PlayerID, card Card) Action {
	return Action{Type: ActionCallPartner, Player: p, Card: &card}
}

// MakeCall returns a make_call action
func MakeCall(p model.PlayerID, call Call) Action {
	return Action{Type: ActionMakeCall, Player: p, Call: call}
}

// AckDog returns an ack_dog action
func AckDog(p model.PlayerID) Action {
	return Action{Type: ActionAckDog, Player: p}
}

// TakeDog returns a take_dog action
func TakeDog(p model.PlayerID) Action {
	return Action{Type: ActionTakeDog, Player: p}
}

// AddToDog returns an add_to_dog action
func AddToDog(p model.PlayerID, cards ...Card) Action {
	return Action{Type: ActionAddToDog, Player: p, Cards: cards}
}

// PlayCard returns a play_card action
func PlayCard(p model.PlayerID, card Card) Action {
	return Action{Type: ActionPlayCard, Player: p, Card: &card}
}

// Message returns a message action
func Message(p model.PlayerID, text string) Action {
	return Action{Type: ActionMessage, Player: p, Text: text}
}

// JokerExchange returns a joker_exchange action
func JokerExchange(p model.PlayerID, card Card) Action {
	return Action{Type: ActionJokerExchange, Player: p, Card: &card}
}
