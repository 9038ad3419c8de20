package tarot

import (
	"fmt"

	"github.com/mcoot/tarot-go2/internal/dependencies/random"
	"github.com/mcoot/tarot-go2/internal/model"
)

// Apply validates action against state and returns the successor state together with the
// transitions to deliver, in emission order. Apply works on a copy: when it returns an error
// the returned state is the input state, unmodified. An *InvariantError means the state is
// corrupt and must not be used further.
func Apply(state BoardState, action Action) (BoardState, []Transition, error) {
	if state == nil {
		return nil, nil, invariantf("no board state")
	}

	next, transitions, err := dispatch(state.clone(), action)
	if err != nil {
		return state, nil, err
	}
	if groups := next.cardGroups(); groups != nil {
		if err := verifyPartition(groups...); err != nil {
			return state, nil, err
		}
	}
	return next, transitions, nil
}

func dispatch(s BoardState, a Action) (BoardState, []Transition, error) {
	if a.Type == ActionMessage {
		return applyMessage(s, a)
	}
	switch st := s.(type) {
	case *NewGame:
		return st.apply(a)
	case *Bidding:
		return st.apply(a)
	case *PartnerCall:
		return st.apply(a)
	case *DogReveal:
		return st.apply(a)
	case *DogExchange:
		return st.apply(a)
	case *Playing:
		return st.apply(a)
	case *Completed:
		return nil, nil, phaseError(st, a)
	default:
		return nil, nil, invariantf("unknown board state %T", s)
	}
}

func phaseError(s BoardState, a Action) error {
	return fmt.Errorf("%s during %s: %w", a.Type, s.Phase(), ErrInvalidPhaseAction)
}

func requireSeated(t *Table, p model.PlayerID) error {
	if !t.IsSeated(p) {
		return fmt.Errorf("player %q: %w", p, ErrPlayerNotInGame)
	}
	return nil
}

func applyMessage(s BoardState, a Action) (BoardState, []Transition, error) {
	if a.Player == "" {
		return nil, nil, fmt.Errorf("message without sender: %w", ErrPlayerNotInGame)
	}
	t := s.table()
	t.Chat = append(t.Chat, ChatMessage{Player: a.Player, Text: a.Text})
	return s, []Transition{public(TransitionMessage, a.Player, MessagePayload{Text: a.Text})}, nil
}

func (s *NewGame) apply(a Action) (BoardState, []Transition, error) {
	switch a.Type {
	case ActionEnterGame:
		return s.enter(a.Player)
	case ActionPlayerReady:
		return s.ready(a.Player)
	default:
		return nil, nil, phaseError(s, a)
	}
}

func (s *NewGame) enter(p model.PlayerID) (BoardState, []Transition, error) {
	if p == "" {
		return nil, nil, fmt.Errorf("empty player id: %w", ErrPlayerNotInGame)
	}
	if s.IsSeated(p) {
		return nil, nil, fmt.Errorf("player %q already entered: %w", p, ErrActionAlreadyHappened)
	}
	if len(s.Seats) >= MaxPlayers {
		return nil, nil, fmt.Errorf("table has %d players: %w", len(s.Seats), ErrTooManyPlayers)
	}
	s.Seats = append(s.Seats, p)
	return s, []Transition{public(TransitionPlayerEntered, p, nil)}, nil
}

func (s *NewGame) ready(p model.PlayerID) (BoardState, []Transition, error) {
	if err := requireSeated(&s.Table, p); err != nil {
		return nil, nil, err
	}
	if s.IsReady(p) {
		return nil, nil, fmt.Errorf("player %q already ready: %w", p, ErrActionAlreadyHappened)
	}
	s.Ready = append(s.Ready, p)
	transitions := []Transition{public(TransitionPlayerReady, p, nil)}

	if len(s.Ready) < len(s.Seats) || len(s.Seats) < MinPlayers {
		return s, transitions, nil
	}
	next, dealt, err := s.deal()
	if err != nil {
		return nil, nil, err
	}
	return next, append(transitions, dealt...), nil
}

// deal moves a fully ready table into bidding. The deal is seeded from the table seed and the
// hand number so replaying the same actions reproduces the same cards.
func (s *NewGame) deal() (BoardState, []Transition, error) {
	rnd := random.NewSeeded(s.Seed + uint64(s.HandNumber))
	d, err := DealCards(len(s.Seats), rnd)
	if err != nil {
		return nil, nil, err
	}

	hands := make(Hands, len(s.Seats))
	for i, p := range s.Seats {
		hands[p] = d.Hands[i]
	}
	first := s.firstToSpeak()
	next := &Bidding{
		Table: s.Table,
		Hands: hands,
		Dog:   d.Dog,
		Bids: CurrentBids{
			Remaining: s.rotation(first),
			Calls:     Calls{},
		},
	}

	transitions := make([]Transition, 0, len(s.Seats)+1)
	for _, p := range s.Seats {
		transitions = append(transitions, private(TransitionNewGame, p, NewGamePayload{
			Hand:       cloneCards(hands[p]),
			Seats:      cloneSeats(s.Seats),
			Dealer:     s.DealerID(),
			HandNumber: s.HandNumber,
		}))
	}
	transitions = append(transitions, public(TransitionPhaseChanged, "", PhaseChangedPayload{
		Phase: PhaseBidding,
		Turn:  first,
	}))
	return next, transitions, nil
}

// NextHand starts the following hand from a Completed state: same seats, dealer rotated,
// nobody ready yet
func NextHand(state BoardState) (BoardState, []Transition, error) {
	done, ok := state.(*Completed)
	if !ok {
		return state, nil, fmt.Errorf("next hand during %s: %w", state.Phase(), ErrInvalidPhaseAction)
	}
	next := nextHandTable(done.table())
	return next, []Transition{public(TransitionPhaseChanged, "", PhaseChangedPayload{Phase: PhaseNewGame})}, nil
}

func nextHandTable(t *Table) *NewGame {
	table := t.copy()
	table.Dealer = (table.Dealer + 1) % len(table.Seats)
	table.HandNumber++
	return NewGameState(table)
}

func cloneSeats(seats []model.PlayerID) []model.PlayerID {
	out := make([]model.PlayerID, len(seats))
	copy(out, seats)
	return out
}
