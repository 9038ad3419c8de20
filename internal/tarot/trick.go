package tarot

import (
	"fmt"
	"slices"

	"github.com/mcoot/tarot-go2/internal/model"
)

// startPlay opens trick play. The called card's holder, if any other than the bidder, becomes
// the secret partner. The player left of the dealer leads unless the bidder declared a slam.
func startPlay(t Table, hands Hands, aside []Card, asideBidder bool, contract CompletedBids, shows ShowLedger, partner PartnerInfo) (*Playing, []Transition) {
	bidder := contract.Bidder()
	if partner.Card != nil {
		for p, hand := range hands {
			if p != bidder && containsCard(hand, *partner.Card) {
				partner.Holder = p
			}
		}
	}

	leader := t.firstToSpeak()
	if contract.Calls.Has(bidder, CallDeclaredSlam) {
		leader = bidder
	}

	handSize, _, _ := DealSizes(len(t.Seats))
	won := make(Hands, len(t.Seats))
	for _, p := range t.Seats {
		won[p] = []Card{}
	}
	next := &Playing{
		Table:       t,
		Hands:       hands,
		Contract:    contract,
		Shows:       shows,
		Partner:     partner,
		Aside:       aside,
		AsideBidder: asideBidder,
		Leader:      leader,
		Tricks:      []CompletedTrick{},
		Won:         won,
		TrickCount:  handSize,
	}
	return next, []Transition{public(TransitionPhaseChanged, "", PhaseChangedPayload{Phase: PhasePlaying, Turn: leader})}
}

func (s *Playing) apply(a Action) (BoardState, []Transition, error) {
	switch a.Type {
	case ActionPlayCard:
		return s.play(a)
	case ActionJokerExchange:
		return s.exchange(a)
	case ActionShowTrump:
		if err := requireSeated(&s.Table, a.Player); err != nil {
			return nil, nil, err
		}
		if len(s.Tricks) > 0 || slices.Contains(s.Trick.Players, a.Player) {
			return nil, nil, fmt.Errorf("shows are made before playing a first card: %w", ErrIllegalShow)
		}
		ts, err := showTrump(&s.Table, s.Hands, &s.Shows, s.Contract.Calls, a)
		return stay(s, ts, err)
	case ActionAckTrumpShow:
		ts, err := ackTrumpShow(&s.Table, &s.Shows, a.Player)
		return stay(s, ts, err)
	default:
		return nil, nil, phaseError(s, a)
	}
}

func (s *Playing) play(a Action) (BoardState, []Transition, error) {
	p := a.Player
	if err := requireSeated(&s.Table, p); err != nil {
		return nil, nil, err
	}
	if s.AllTricksPlayed() {
		return nil, nil, fmt.Errorf("every trick has been played: %w", ErrInvalidPhaseAction)
	}
	if s.Shows.Pending != nil {
		return nil, nil, fmt.Errorf("show by %q not yet acknowledged: %w", s.Shows.Pending.Player, ErrAwaitingAcknowledgement)
	}
	if current := s.CurrentPlayer(); current != p {
		return nil, nil, fmt.Errorf("%q to play, not %q: %w", current, p, ErrOutOfTurn)
	}
	if a.Card == nil {
		return nil, nil, fmt.Errorf("no card played: %w", ErrCardNotInHand)
	}
	card := *a.Card
	hand := s.Hands[p]
	if !containsCard(hand, card) {
		return nil, nil, fmt.Errorf("%v: %w", card, ErrCardNotInHand)
	}
	if err := CheckPlay(card, hand, s.Trick); err != nil {
		return nil, nil, err
	}

	s.Hands[p], _ = removeCard(hand, card)
	s.Trick.Cards = append(s.Trick.Cards, card)
	s.Trick.Players = append(s.Trick.Players, p)
	if s.Trick.LedSuit == "" && !card.IsJoker() {
		s.Trick.LedSuit = card.Suit
	}

	revealed := false
	if s.Partner.Card != nil && card == *s.Partner.Card && p != s.Bidder() && !s.Partner.Revealed {
		s.Partner.Holder = p
		s.Partner.Revealed = true
		revealed = true
	}

	trickDone := len(s.Trick.Cards) == len(s.Seats)
	next := model.PlayerID("")
	if !trickDone {
		next = s.CurrentPlayer()
	}
	transitions := []Transition{public(TransitionCardPlayed, p, CardPlayedPayload{
		Card:    card,
		Next:    next,
		Partner: revealed,
	})}
	if !trickDone {
		return s, transitions, nil
	}

	transitions = append(transitions, s.completeTrick()...)
	if !s.AllTricksPlayed() {
		return s, transitions, nil
	}
	final, more, err := s.settle()
	if err != nil {
		return nil, nil, err
	}
	return final, append(transitions, more...), nil
}

// completeTrick resolves the winner and moves the cards to the collections. A Joker that does
// not win stays with its owner, who owes the winner a card when they are on opposite sides.
// On the last trick the Joker goes to the winner with no debt.
func (s *Playing) completeTrick() []Transition {
	trick := s.Trick
	index := len(s.Tricks)
	last := index == s.TrickCount-1

	slamLead := last && trick.Cards[0].IsJoker() && s.sideWonAll(s.OnBidderSide(trick.Players[0]))
	w := winningIndex(trick, slamLead)
	winner := trick.Players[w]

	var transitions []Transition
	var debts []JokerExchangeState
	for i, c := range trick.Cards {
		owner := trick.Players[i]
		if c.IsJoker() && i != w && !last {
			s.Won[owner] = append(s.Won[owner], c)
			if s.OnBidderSide(owner) != s.OnBidderSide(winner) {
				debts = append(debts, JokerExchangeState{Debtor: owner, Creditor: winner, Trick: index})
			}
			continue
		}
		s.Won[winner] = append(s.Won[winner], c)
	}

	completed := CompletedTrick{Trick: trick, Winner: winner, Index: index}
	s.Tricks = append(s.Tricks, completed)
	s.Trick = Trick{}
	s.Leader = winner

	transitions = append(transitions, public(TransitionCompletedTrick, winner, CompletedTrickPayload{
		Trick:  CompletedTrick{Trick: trick.clone(), Winner: winner, Index: index},
		Points: CountPoints(trick.Cards),
	}))
	for _, d := range debts {
		s.Debts = append(s.Debts, d)
		transitions = append(transitions, s.debtTransitions(TransitionJokerOwed, d, JokerOwedPayload{
			Debtor:   d.Debtor,
			Creditor: d.Creditor,
			Trick:    d.Trick,
		})...)
	}
	return transitions
}

// partnerSecret reports whether a called partner has not yet shown themself. Until then a debt
// between two players tells everyone they are on opposite sides.
func (s *Playing) partnerSecret() bool {
	return s.Partner.Card != nil && !s.Partner.Revealed
}

// debtTransitions announces a debt event publicly, or only to the two players involved while
// the partner is secret
func (s *Playing) debtTransitions(typ TransitionType, d JokerExchangeState, payload any) []Transition {
	if !s.partnerSecret() {
		return []Transition{public(typ, d.Debtor, payload)}
	}
	return []Transition{private(typ, d.Debtor, payload), private(typ, d.Creditor, payload)}
}

// sideWonAll reports whether the given side has won every trick so far (and at least one)
func (s *Playing) sideWonAll(bidderSide bool) bool {
	if len(s.Tricks) == 0 {
		return false
	}
	for _, t := range s.Tricks {
		if s.OnBidderSide(t.Winner) != bidderSide {
			return false
		}
	}
	return true
}

func (s *Playing) exchange(a Action) (BoardState, []Transition, error) {
	p := a.Player
	if err := requireSeated(&s.Table, p); err != nil {
		return nil, nil, err
	}
	i := slices.IndexFunc(s.Debts, func(d JokerExchangeState) bool { return d.Debtor == p && !d.Settled() })
	if i < 0 {
		return nil, nil, fmt.Errorf("player %q owes no card: %w", p, ErrIllegalExchange)
	}
	if a.Card == nil {
		return nil, nil, fmt.Errorf("no card given: %w", ErrIllegalExchange)
	}
	card := *a.Card
	if card.IsJoker() {
		return nil, nil, fmt.Errorf("the joker cannot be exchanged for itself: %w", ErrIllegalExchange)
	}
	collected, ok := removeCard(s.Won[p], card)
	if !ok {
		return nil, nil, fmt.Errorf("%v is not among %q's collected cards: %w", card, p, ErrIllegalExchange)
	}

	debt := &s.Debts[i]
	s.Won[p] = collected
	s.Won[debt.Creditor] = append(s.Won[debt.Creditor], card)
	debt.CardExchanged = &card

	transitions := s.debtTransitions(TransitionJokerExchanged, *debt, JokerExchangedPayload{
		Debtor:   p,
		Creditor: debt.Creditor,
		Card:     card,
	})
	if !s.AllTricksPlayed() {
		return s, transitions, nil
	}
	final, more, err := s.settle()
	if err != nil {
		return nil, nil, err
	}
	return final, append(transitions, more...), nil
}

// settle runs once every trick is played. Debts whose debtor collected nothing to give are
// settled by handing the Joker itself to the creditor; the hand is scored once no payable
// debt remains.
func (s *Playing) settle() (BoardState, []Transition, error) {
	var transitions []Transition
	waiting := false
	for i := range s.Debts {
		d := &s.Debts[i]
		if d.Settled() {
			continue
		}
		if slices.ContainsFunc(s.Won[d.Debtor], func(c Card) bool { return !c.IsJoker() }) {
			waiting = true
			continue
		}
		collected, ok := removeCard(s.Won[d.Debtor], Joker)
		if !ok {
			return nil, nil, invariantf("debtor %q no longer holds the joker", d.Debtor)
		}
		s.Won[d.Debtor] = collected
		s.Won[d.Creditor] = append(s.Won[d.Creditor], Joker)
		joker := Joker
		d.CardExchanged = &joker
		transitions = append(transitions, s.debtTransitions(TransitionJokerExchanged, *d, JokerExchangedPayload{
			Debtor:   d.Debtor,
			Creditor: d.Creditor,
			Card:     Joker,
			Forfeit:  true,
		})...)
	}
	if waiting {
		return s, transitions, nil
	}

	result, err := score(s)
	if err != nil {
		return nil, nil, err
	}
	done := &Completed{
		Table:  s.Table,
		Result: result,
		Tricks: s.Tricks,
		Aside:  s.Aside,
		Won:    s.Won,
	}
	transitions = append(transitions,
		public(TransitionGameCompleted, result.Bidder, GameCompletedPayload{Result: result.clone()}),
		public(TransitionPhaseChanged, "", PhaseChangedPayload{Phase: PhaseCompleted}),
	)
	return done, transitions, nil
}

// ledSuit returns the suit of the first card that is not the Joker, or "" if there is none
func ledSuit(t Trick) Suit {
	for _, c := range t.Cards {
		if !c.IsJoker() {
			return c.Suit
		}
	}
	return ""
}

func highestTrump(cards []Card) Rank {
	var high Rank
	for _, c := range cards {
		if c.IsTrump() && c.Rank > high {
			high = c.Rank
		}
	}
	return high
}

// CheckPlay returns nil if card may be played from hand to trick. The Joker is always legal.
// Otherwise a player follows the led suit if able, else trumps if able, and when trumping must
// beat the highest trump on the table if able.
func CheckPlay(card Card, hand []Card, trick Trick) error {
	if card.IsJoker() {
		return nil
	}
	led := ledSuit(trick)
	if led == "" {
		return nil
	}
	high := highestTrump(trick.Cards)

	if led != SuitTrump && hasSuit(hand, led) {
		if card.Suit != led {
			return fmt.Errorf("%v does not follow %s: %w", card, led, ErrIllegalCardPlay)
		}
		return nil
	}
	if !hasSuit(hand, SuitTrump) {
		return nil
	}
	if !card.IsTrump() {
		return fmt.Errorf("%v played while holding trumps: %w", card, ErrIllegalCardPlay)
	}
	if card.Rank < high && hasTrumpAbove(hand, high) {
		return fmt.Errorf("%v does not overtrump %d: %w", card, int(high), ErrIllegalCardPlay)
	}
	return nil
}

// LegalPlays returns every card of hand that may be played to trick
func LegalPlays(hand []Card, trick Trick) []Card {
	var out []Card
	for _, c := range hand {
		if CheckPlay(c, hand, trick) == nil {
			out = append(out, c)
		}
	}
	return out
}

// WinningIndex returns the index of the card that wins a full trick. The Joker never wins.
func WinningIndex(trick Trick) int {
	return winningIndex(trick, false)
}

func winningIndex(trick Trick, jokerLeadWins bool) int {
	if jokerLeadWins && len(trick.Cards) > 0 && trick.Cards[0].IsJoker() {
		return 0
	}
	led := ledSuit(trick)
	best := -1
	for i, c := range trick.Cards {
		if c.IsJoker() {
			continue
		}
		if best < 0 {
			if c.IsTrump() || c.Suit == led {
				best = i
			}
			continue
		}
		b := trick.Cards[best]
		switch {
		case c.IsTrump() && !b.IsTrump():
			best = i
		case c.IsTrump() && b.IsTrump() && c.Rank > b.Rank:
			best = i
		case !b.IsTrump() && c.Suit == b.Suit && c.Rank > b.Rank:
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	return best
}
