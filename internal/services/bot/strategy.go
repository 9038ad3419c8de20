package bot

import (
	"slices"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

// Strategy defines the choices a bot makes. Each method is only called when the bot has a
// legal choice to make, with its own view of the table.
type Strategy interface {
	// ChooseBid returns the bid to place, or 0 to pass. legal is never empty.
	ChooseBid(hand []tarot.Card, legal []tarot.BidValue) tarot.BidValue
	// ChoosePartnerCard selects the card to call from the callable cards
	ChoosePartnerCard(hand []tarot.Card, callable []tarot.Card) tarot.Card
	// ChooseDiscard selects one card to put in the dog from the legal discards
	ChooseDiscard(hand []tarot.Card, legal []tarot.Card) tarot.Card
	// ChooseCard selects the card to play from the legal plays
	ChooseCard(game *tarot.Playing, self model.PlayerID, legal []tarot.Card) tarot.Card
}

// NextAction returns the action self should take in state, or false if self has nothing to do.
// state should be self's view of the table. Acknowledgements, readying and Joker debts are
// handled here; the strategy makes the remaining choices.
func NextAction(strategy Strategy, state tarot.BoardState, self model.PlayerID) (tarot.Action, bool) {
	table := tarot.TableOf(state)
	if !table.IsSeated(self) {
		return tarot.Action{}, false
	}

	if ledger := showsOf(state); ledger != nil && ledger.Pending != nil {
		if slices.Contains(ledger.Pending.Unacknowledged, self) {
			return tarot.AckTrumpShow(self), true
		}
		return tarot.Action{}, false
	}

	switch st := state.(type) {
	case *tarot.NewGame:
		if !st.IsReady(self) {
			return tarot.PlayerReady(self), true
		}
	case *tarot.Bidding:
		if st.CurrentBidder() != self {
			break
		}
		legal := tarot.LegalBids(st.Bids.High)
		if len(legal) == 0 {
			return tarot.PassBid(self), true
		}
		if bid := strategy.ChooseBid(st.Hands[self], legal); slices.Contains(legal, bid) {
			return tarot.PlaceBid(self, bid), true
		}
		return tarot.PassBid(self), true
	case *tarot.PartnerCall:
		if st.Contract.Bidder() != self {
			break
		}
		hand := st.Hands[self]
		return tarot.CallPartner(self, strategy.ChoosePartnerCard(hand, tarot.CallableCards(hand))), true
	case *tarot.DogReveal:
		if st.Contract.Bidder() == self {
			return tarot.TakeDog(self), true
		}
		if !slices.Contains(st.Acknowledged, self) {
			return tarot.AckDog(self), true
		}
	case *tarot.DogExchange:
		if st.Contract.Bidder() != self {
			break
		}
		if n := st.RemainingDiscards(); n > 0 {
			hand := st.Hands[self]
			return tarot.AddToDog(self, strategy.ChooseDiscard(hand, tarot.LegalDiscards(hand, n))), true
		}
		return tarot.AckDog(self), true
	case *tarot.Playing:
		if c, ok := jokerPayment(st, self); ok {
			return tarot.JokerExchange(self, c), true
		}
		if st.CurrentPlayer() != self {
			break
		}
		hand := st.Hands[self]
		return tarot.PlayCard(self, strategy.ChooseCard(st, self, tarot.LegalPlays(hand, st.Trick))), true
	}
	return tarot.Action{}, false
}

// jokerPayment returns the lowest card self can hand over for an outstanding Joker debt
func jokerPayment(game *tarot.Playing, self model.PlayerID) (tarot.Card, bool) {
	for _, d := range game.OutstandingDebts() {
		if d.Debtor != self {
			continue
		}
		var best tarot.Card
		found := false
		for _, c := range game.Won[self] {
			if c.IsJoker() {
				continue
			}
			if !found || c.Points() < best.Points() {
				best, found = c, true
			}
		}
		return best, found
	}
	return tarot.Card{}, false
}

func showsOf(state tarot.BoardState) *tarot.ShowLedger {
	switch st := state.(type) {
	case *tarot.Bidding:
		return &st.Shows
	case *tarot.PartnerCall:
		return &st.Shows
	case *tarot.DogReveal:
		return &st.Shows
	case *tarot.DogExchange:
		return &st.Shows
	case *tarot.Playing:
		return &st.Shows
	}
	return nil
}
