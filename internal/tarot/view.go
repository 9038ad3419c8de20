package tarot

import "github.com/mcoot/tarot-go2/internal/model"

// PlayerView is a board state as one viewer is entitled to see it
type PlayerView struct {
	Viewer    model.PlayerID         `json:"viewer"`
	Phase     Phase                  `json:"phase"`
	State     BoardState             `json:"state"`
	HandSizes map[model.PlayerID]int `json:"hand_sizes,omitempty"`
}

// View redacts state for viewer. Players see only their own hand. Observers see every hand
// (and the dog) only when the table plays with public hands. The dog is visible to all while
// revealed and once the hand is complete; the secret partner only once the called card is played.
// Nobody sees the seed.
func View(state BoardState, viewer model.PlayerID) PlayerView {
	s := state.clone()
	t := s.table()
	t.Seed = 0
	open := !t.IsSeated(viewer) && t.Settings.PublicHands

	view := PlayerView{Viewer: viewer, Phase: s.Phase(), State: s}
	switch st := s.(type) {
	case *Bidding:
		view.HandSizes = redactHands(st.Hands, viewer, open)
		if !open {
			st.Dog = nil
		}
	case *PartnerCall:
		view.HandSizes = redactHands(st.Hands, viewer, open)
		if !open {
			st.Dog = nil
		}
	case *DogReveal:
		view.HandSizes = redactHands(st.Hands, viewer, open)
		st.Partner = redactPartner(st.Partner, viewer, open)
	case *DogExchange:
		view.HandSizes = redactHands(st.Hands, viewer, open)
		st.Partner = redactPartner(st.Partner, viewer, open)
		if !open && viewer != st.Contract.Bidder() {
			st.Discard = nil
		}
	case *Playing:
		view.HandSizes = redactHands(st.Hands, viewer, open)
		if !open && st.partnerSecret() {
			st.Debts = redactDebts(st.Debts, viewer)
		}
		st.Partner = redactPartner(st.Partner, viewer, open)
		knowsAside := st.AsideBidder && viewer == st.Bidder() && st.Rules.DogFor(st.Contract.Winning.Value) == DispositionExchange
		if !open && !knowsAside {
			st.Aside = nil
		}
	}
	return view
}

// redactHands hides every hand but viewer's and returns the hand sizes
func redactHands(hands Hands, viewer model.PlayerID, open bool) map[model.PlayerID]int {
	sizes := make(map[model.PlayerID]int, len(hands))
	for p, cards := range hands {
		sizes[p] = len(cards)
		if !open && p != viewer {
			hands[p] = nil
		}
	}
	return sizes
}

func redactPartner(p PartnerInfo, viewer model.PlayerID, open bool) PartnerInfo {
	if p.Revealed || open || p.Holder == viewer {
		return p
	}
	p.Holder = ""
	return p
}

// redactDebts keeps only the debts viewer is party to
func redactDebts(debts []JokerExchangeState, viewer model.PlayerID) []JokerExchangeState {
	var kept []JokerExchangeState
	for _, d := range debts {
		if d.Debtor == viewer || d.Creditor == viewer {
			kept = append(kept, d)
		}
	}
	return kept
}
