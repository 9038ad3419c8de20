package tarot

import (
	"fmt"
	"slices"
)

// enterDogStep routes the hand once the contract (and partner card) are known.
// Petite and Garde reveal the dog; stronger contracts set it aside unseen.
func enterDogStep(t Table, hands Hands, dog []Card, contract CompletedBids, shows ShowLedger, partner PartnerInfo) (BoardState, []Transition) {
	switch t.Rules.DogFor(contract.Winning.Value) {
	case DispositionExchange:
		next := &DogReveal{
			Table:    t,
			Hands:    hands,
			Dog:      dog,
			Contract: contract,
			Shows:    shows,
			Partner:  partner,
		}
		return next, []Transition{
			public(TransitionDogReveal, contract.Bidder(), DogRevealPayload{Dog: cloneCards(dog)}),
			public(TransitionPhaseChanged, "", PhaseChangedPayload{Phase: PhaseDogReveal, Turn: contract.Bidder()}),
		}
	case DispositionBidder:
		return startPlay(t, hands, dog, true, contract, shows, partner)
	default:
		return startPlay(t, hands, dog, false, contract, shows, partner)
	}
}

func (s *DogReveal) apply(a Action) (BoardState, []Transition, error) {
	switch a.Type {
	case ActionAckDog:
		return s.acknowledge(a)
	case ActionTakeDog:
		return s.take(a)
	case ActionMakeCall:
		russian := a.Player == s.Contract.Bidder() && s.Contract.Uncontested
		ts, err := makeCall(&s.Table, s.Contract.Calls, a, russian)
		return stay(s, ts, err)
	case ActionShowTrump:
		ts, err := showTrump(&s.Table, s.Hands, &s.Shows, s.Contract.Calls, a)
		return stay(s, ts, err)
	case ActionAckTrumpShow:
		ts, err := ackTrumpShow(&s.Table, &s.Shows, a.Player)
		return stay(s, ts, err)
	default:
		return nil, nil, phaseError(s, a)
	}
}

func (s *DogReveal) acknowledge(a Action) (BoardState, []Transition, error) {
	if err := requireSeated(&s.Table, a.Player); err != nil {
		return nil, nil, err
	}
	if a.Player == s.Contract.Bidder() {
		return nil, nil, fmt.Errorf("bidder takes the dog rather than acknowledging it: %w", ErrInvalidPhaseAction)
	}
	if slices.Contains(s.Acknowledged, a.Player) {
		return nil, nil, fmt.Errorf("dog already acknowledged: %w", ErrActionAlreadyHappened)
	}
	s.Acknowledged = append(s.Acknowledged, a.Player)
	return s, []Transition{public(TransitionDogAcknowledged, a.Player, nil)}, nil
}

// take gives the dog to the bidder. It does not wait for the other players' acknowledgements.
func (s *DogReveal) take(a Action) (BoardState, []Transition, error) {
	if err := requireSeated(&s.Table, a.Player); err != nil {
		return nil, nil, err
	}
	bidder := s.Contract.Bidder()
	if a.Player != bidder {
		return nil, nil, fmt.Errorf("only %q takes the dog: %w", bidder, ErrOutOfTurn)
	}

	hand := append(s.Hands[bidder], s.Dog...)
	SortCards(hand)
	s.Hands[bidder] = hand

	next := &DogExchange{
		Table:        s.Table,
		Hands:        s.Hands,
		DogSize:      len(s.Dog),
		Contract:     s.Contract,
		Shows:        s.Shows,
		Partner:      s.Partner,
		Acknowledged: s.Acknowledged,
	}
	return next, []Transition{
		private(TransitionDogTaken, bidder, DogTakenPayload{Hand: cloneCards(hand), Discard: next.DogSize}),
		public(TransitionPhaseChanged, "", PhaseChangedPayload{Phase: PhaseDogExchange, Turn: bidder}),
	}, nil
}

func (s *DogExchange) apply(a Action) (BoardState, []Transition, error) {
	switch a.Type {
	case ActionAddToDog:
		return s.discard(a)
	case ActionAckDog:
		return s.acknowledge(a)
	case ActionMakeCall:
		russian := a.Player == s.Contract.Bidder() && s.Contract.Uncontested
		ts, err := makeCall(&s.Table, s.Contract.Calls, a, russian)
		return stay(s, ts, err)
	case ActionShowTrump:
		ts, err := showTrump(&s.Table, s.Hands, &s.Shows, s.Contract.Calls, a)
		return stay(s, ts, err)
	case ActionAckTrumpShow:
		ts, err := ackTrumpShow(&s.Table, &s.Shows, a.Player)
		return stay(s, ts, err)
	default:
		return nil, nil, phaseError(s, a)
	}
}

func (s *DogExchange) discard(a Action) (BoardState, []Transition, error) {
	if err := requireSeated(&s.Table, a.Player); err != nil {
		return nil, nil, err
	}
	bidder := s.Contract.Bidder()
	if a.Player != bidder {
		return nil, nil, fmt.Errorf("only %q discards: %w", bidder, ErrOutOfTurn)
	}
	if len(a.Cards) == 0 {
		return nil, nil, fmt.Errorf("no cards to discard: %w", ErrIllegalDogDiscard)
	}
	if len(a.Cards) > s.RemainingDiscards() {
		return nil, nil, fmt.Errorf("%d cards exceed the %d remaining discards: %w", len(a.Cards), s.RemainingDiscards(), ErrIllegalDogDiscard)
	}

	var transitions []Transition
	hand := s.Hands[bidder]
	for _, c := range a.Cards {
		if !containsCard(hand, c) {
			return nil, nil, fmt.Errorf("%v: %w", c, ErrCardNotInHand)
		}
		if err := checkDiscard(c, hand, s.RemainingDiscards()); err != nil {
			return nil, nil, err
		}
		hand, _ = removeCard(hand, c)
		s.Discard = append(s.Discard, c)
		if c.Suit == SuitTrump {
			transitions = append(transitions, public(TransitionDogDiscardTrump, bidder, DogDiscardTrumpPayload{Card: c}))
		}
	}
	s.Hands[bidder] = hand
	return s, transitions, nil
}

func (s *DogExchange) acknowledge(a Action) (BoardState, []Transition, error) {
	if err := requireSeated(&s.Table, a.Player); err != nil {
		return nil, nil, err
	}
	if a.Player != s.Contract.Bidder() {
		if slices.Contains(s.Acknowledged, a.Player) {
			return nil, nil, fmt.Errorf("dog already acknowledged: %w", ErrActionAlreadyHappened)
		}
		s.Acknowledged = append(s.Acknowledged, a.Player)
		return s, []Transition{public(TransitionDogAcknowledged, a.Player, nil)}, nil
	}

	if n := s.RemainingDiscards(); n > 0 {
		return nil, nil, fmt.Errorf("%d more cards to discard: %w", n, ErrIllegalDogDiscard)
	}
	next, transitions := startPlay(s.Table, s.Hands, s.Discard, true, s.Contract, s.Shows, s.Partner)
	completed := public(TransitionDogCompleted, a.Player, DogCompletedPayload{Leader: next.Leader})
	return next, append([]Transition{completed}, transitions...), nil
}

// discardTier ranks how protected a card is: ordinary suit cards, then plain trumps, then
// Rois and bouts
func discardTier(c Card) int {
	switch {
	case c.IsBout() || (c.Suit != SuitTrump && c.Rank == RankRoi):
		return 2
	case c.Suit == SuitTrump:
		return 1
	default:
		return 0
	}
}

// checkDiscard allows c only when the less protected cards left in hand cannot fill the
// remaining slots
func checkDiscard(c Card, hand []Card, slots int) error {
	tier := discardTier(c)
	lower := 0
	for _, h := range hand {
		if discardTier(h) < tier {
			lower++
		}
	}
	if lower >= slots {
		return fmt.Errorf("%v is protected while %d less protected cards remain: %w", c, lower, ErrIllegalDogDiscard)
	}
	return nil
}

// LegalDiscards returns the cards of hand that may go into the dog with slots remaining
func LegalDiscards(hand []Card, slots int) []Card {
	if slots <= 0 {
		return nil
	}
	var out []Card
	for _, c := range hand {
		if checkDiscard(c, hand, slots) == nil {
			out = append(out, c)
		}
	}
	return out
}
