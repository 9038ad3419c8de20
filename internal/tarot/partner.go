package tarot

import "fmt"

func (s *PartnerCall) apply(a Action) (BoardState, []Transition, error) {
	switch a.Type {
	case ActionCallPartner:
		return s.callPartner(a)
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

func (s *PartnerCall) callPartner(a Action) (BoardState, []Transition, error) {
	if err := requireSeated(&s.Table, a.Player); err != nil {
		return nil, nil, err
	}
	bidder := s.Contract.Bidder()
	if a.Player != bidder {
		return nil, nil, fmt.Errorf("only %q calls a partner: %w", bidder, ErrOutOfTurn)
	}
	if a.Card == nil {
		return nil, nil, fmt.Errorf("no card named: %w", ErrIllegalPartnerCall)
	}
	card := *a.Card
	if !card.IsValid() || card.Suit == SuitTrump {
		return nil, nil, fmt.Errorf("%v cannot be called: %w", card, ErrIllegalPartnerCall)
	}
	if want := CallableRank(s.Hands[bidder]); card.Rank != want {
		return nil, nil, fmt.Errorf("must call rank %d, not %v: %w", int(want), card, ErrIllegalPartnerCall)
	}

	transitions := []Transition{public(TransitionPartnerCalled, bidder, PartnerCalledPayload{Card: card})}
	next, more := enterDogStep(s.Table, s.Hands, s.Dog, s.Contract, s.Shows, PartnerInfo{Card: &card})
	return next, append(transitions, more...), nil
}

// CallableRank returns the rank the bidder must call: a Roi, or a Dame when holding all four
// Rois, and so on down
func CallableRank(hand []Card) Rank {
	for rank := RankRoi; rank > 1; rank-- {
		held := 0
		for _, suit := range RegularSuits {
			if containsCard(hand, Card{Suit: suit, Rank: rank}) {
				held++
			}
		}
		if held < len(RegularSuits) {
			return rank
		}
	}
	return 1
}

// CallableCards returns every card the holder of hand may call
func CallableCards(hand []Card) []Card {
	rank := CallableRank(hand)
	out := make([]Card, 0, len(RegularSuits))
	for _, suit := range RegularSuits {
		out = append(out, Card{Suit: suit, Rank: rank})
	}
	return out
}
