package tarot

import (
	"fmt"
	"slices"

	"github.com/mcoot/tarot-go2/internal/model"
)

func (s *Bidding) apply(a Action) (BoardState, []Transition, error) {
	switch a.Type {
	case ActionBid:
		return s.bid(a)
	case ActionMakeCall:
		ts, err := makeCall(&s.Table, s.Bids.Calls, a, s.soleBidder(a.Player))
		return stay(s, ts, err)
	case ActionShowTrump:
		ts, err := showTrump(&s.Table, s.Hands, &s.Shows, s.Bids.Calls, a)
		return stay(s, ts, err)
	case ActionAckTrumpShow:
		ts, err := ackTrumpShow(&s.Table, &s.Shows, a.Player)
		return stay(s, ts, err)
	default:
		return nil, nil, phaseError(s, a)
	}
}

// stay returns s unchanged in variant, or the error
func stay(s BoardState, ts []Transition, err error) (BoardState, []Transition, error) {
	if err != nil {
		return nil, nil, err
	}
	return s, ts, nil
}

func (s *Bidding) bid(a Action) (BoardState, []Transition, error) {
	p := a.Player
	if err := requireSeated(&s.Table, p); err != nil {
		return nil, nil, err
	}
	i := slices.Index(s.Bids.Remaining, p)
	if i < 0 {
		return nil, nil, fmt.Errorf("player %q has passed: %w", p, ErrIllegalBid)
	}
	if s.CurrentBidder() != p {
		return nil, nil, fmt.Errorf("bidder is %q, not %q: %w", s.CurrentBidder(), p, ErrOutOfTurn)
	}

	var placed Bid
	if a.Pass {
		placed = Bid{Player: p, Pass: true}
		s.Bids.Remaining = slices.Delete(s.Bids.Remaining, i, i+1)
		if len(s.Bids.Remaining) > 0 {
			s.Bids.Turn = i % len(s.Bids.Remaining)
		} else {
			s.Bids.Turn = 0
		}
	} else {
		if !a.Bid.IsValid() {
			return nil, nil, fmt.Errorf("%d is not a contract: %w", int(a.Bid), ErrIllegalBid)
		}
		if s.Bids.High != nil && a.Bid <= s.Bids.High.Value {
			return nil, nil, fmt.Errorf("%s does not exceed %s: %w", a.Bid.Name(), s.Bids.High.Value.Name(), ErrIllegalBid)
		}
		placed = Bid{Player: p, Value: a.Bid}
		high := placed
		s.Bids.High = &high
		s.Bids.Turn = (i + 1) % len(s.Bids.Remaining)
	}
	s.Bids.Placed = append(s.Bids.Placed, placed)

	transitions := []Transition{public(TransitionBidPlaced, p, BidPlacedPayload{
		Bid:  placed,
		Next: s.CurrentBidder(),
	})}

	high := s.Bids.High
	switch {
	case len(s.Bids.Remaining) == 0:
		next, more := s.redeal()
		return next, append(transitions, more...), nil
	case high != nil && (high.Value == BidChelemGarde || len(s.Bids.Remaining) == 1):
		if len(s.Bids.Remaining) == 1 && s.Bids.Remaining[0] != high.Player {
			return nil, nil, invariantf("last bidder %q does not hold the high bid of %q", s.Bids.Remaining[0], high.Player)
		}
		next, more, err := s.complete()
		if err != nil {
			return nil, nil, err
		}
		return next, append(transitions, more...), nil
	default:
		return s, transitions, nil
	}
}

// soleBidder reports whether p has bid and nobody else has
func (s *Bidding) soleBidder(p model.PlayerID) bool {
	bid := false
	for _, b := range s.Bids.Placed {
		if b.Pass {
			continue
		}
		if b.Player != p {
			return false
		}
		bid = true
	}
	return bid
}

// redeal throws the hand in when every player passed
func (s *Bidding) redeal() (BoardState, []Transition) {
	next := nextHandTable(&s.Table)
	return next, []Transition{
		public(TransitionRedeal, "", RedealPayload{Dealer: next.DealerID(), HandNumber: next.HandNumber}),
		public(TransitionPhaseChanged, "", PhaseChangedPayload{Phase: PhaseNewGame}),
	}
}

func (s *Bidding) complete() (BoardState, []Transition, error) {
	high := *s.Bids.High
	contract := CompletedBids{
		Winning:     high,
		Calls:       s.Bids.Calls,
		Uncontested: s.soleBidder(high.Player),
	}
	transitions := []Transition{public(TransitionBiddingCompleted, high.Player, BiddingCompletedPayload{
		Bidder:   high.Player,
		Contract: high.Value,
		Name:     high.Value.Name(),
		Calls:    contract.Calls.clone(),
	})}

	if len(s.Seats) == MaxPlayers {
		next := &PartnerCall{
			Table:    s.Table,
			Hands:    s.Hands,
			Dog:      s.Dog,
			Contract: contract,
			Shows:    s.Shows,
		}
		return next, append(transitions, public(TransitionPhaseChanged, "", PhaseChangedPayload{
			Phase: PhasePartnerCall,
			Turn:  high.Player,
		})), nil
	}

	next, more := enterDogStep(s.Table, s.Hands, s.Dog, contract, s.Shows, PartnerInfo{})
	return next, append(transitions, more...), nil
}

// makeCall records a declaration. Russian is only accepted when russianAllowed; showed is
// recorded by trump shows and cannot be called directly.
func makeCall(t *Table, calls Calls, a Action, russianAllowed bool) ([]Transition, error) {
	if err := requireSeated(t, a.Player); err != nil {
		return nil, err
	}
	switch a.Call {
	case CallDeclaredSlam:
	case CallRussian:
		if !russianAllowed {
			return nil, fmt.Errorf("russian needs an uncontested bid: %w", ErrIllegalCall)
		}
	default:
		return nil, fmt.Errorf("call %q: %w", a.Call, ErrIllegalCall)
	}
	if calls.Has(a.Player, a.Call) {
		return nil, fmt.Errorf("%s already called: %w", a.Call, ErrActionAlreadyHappened)
	}
	calls[a.Player] = append(calls[a.Player], a.Call)
	return []Transition{public(TransitionCallMade, a.Player, CallMadePayload{Call: a.Call})}, nil
}

// LegalBids returns the contracts that may be bid over high
func LegalBids(high *Bid) []BidValue {
	if high == nil {
		return slices.Clone(BidValues)
	}
	var out []BidValue
	for _, v := range BidValues {
		if v > high.Value {
			out = append(out, v)
		}
	}
	return out
}
