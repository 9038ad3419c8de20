package tarot

import (
	"fmt"
	mathrand "math/rand/v2"

	"github.com/mcoot/tarot-go2/internal/model"
)

var (
	alice = model.PlayerID("alice")
	bob   = model.PlayerID("bob")
	carol = model.PlayerID("carol")
	dave  = model.PlayerID("dave")
	erin  = model.PlayerID("erin")
)

func players(n int) []model.PlayerID {
	return []model.PlayerID{alice, bob, carol, dave, erin}[:n]
}

func card(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

func cards(names ...string) []Card {
	out := make([]Card, len(names))
	for i, n := range names {
		out[i] = card(n)
	}
	return out
}

// restOfDeck returns every card not in any of groups
func restOfDeck(groups ...[]Card) []Card {
	used := make(map[Card]bool)
	for _, g := range groups {
		for _, c := range g {
			used[c] = true
		}
	}
	var out []Card
	for _, c := range NewDeck() {
		if !used[c] {
			out = append(out, c)
		}
	}
	return out
}

func testTable(seats []model.PlayerID) Table {
	t := NewTable(model.GameSettings{}, DefaultRules(), 42)
	t.Seats = append([]model.PlayerID(nil), seats...)
	return t
}

// playing builds a trick-play state from explicit hands. Every card not in a hand is set aside
// for the defence so the deck stays whole.
func playing(seats []model.PlayerID, bidder model.PlayerID, hands Hands) *Playing {
	groups := make([][]Card, 0, len(hands))
	trickCount := 0
	for _, h := range hands {
		groups = append(groups, h)
		trickCount = len(h)
	}
	won := make(Hands, len(seats))
	for _, p := range seats {
		won[p] = []Card{}
	}
	return &Playing{
		Table:    testTable(seats),
		Hands:    hands,
		Contract: CompletedBids{Winning: Bid{Player: bidder, Value: BidPetite}, Calls: Calls{}},
		Partner:  PartnerInfo{},
		Aside:    restOfDeck(groups...),
		Leader:   bidder,
		Tricks:   []CompletedTrick{},
		Won:      won,

		TrickCount: trickCount,
	}
}

// seated enters and readies every player, returning the dealt Bidding state
func seated(seats []model.PlayerID, seed uint64) BoardState {
	var state BoardState = NewGameState(NewTable(model.GameSettings{}, DefaultRules(), seed))
	for _, p := range seats {
		state = mustApply(state, EnterGame(p))
	}
	for _, p := range seats {
		state = mustApply(state, PlayerReady(p))
	}
	return state
}

func mustApply(state BoardState, a Action) BoardState {
	next, _, err := Apply(state, a)
	if err != nil {
		panic(fmt.Sprintf("%s by %s: %v", a.Type, a.Player, err))
	}
	return next
}

// randomAction picks a legal action for whoever must act next
func randomAction(state BoardState, rnd *mathrand.Rand) Action {
	switch st := state.(type) {
	case *NewGame:
		for _, p := range st.Seats {
			if !st.IsReady(p) {
				return PlayerReady(p)
			}
		}
	case *Bidding:
		p := st.CurrentBidder()
		legal := LegalBids(st.Bids.High)
		if len(legal) > 0 && rnd.IntN(3) == 0 {
			return PlaceBid(p, legal[rnd.IntN(min(2, len(legal)))])
		}
		return PassBid(p)
	case *PartnerCall:
		bidder := st.Contract.Bidder()
		callable := CallableCards(st.Hands[bidder])
		return CallPartner(bidder, callable[rnd.IntN(len(callable))])
	case *DogReveal:
		return TakeDog(st.Contract.Bidder())
	case *DogExchange:
		bidder := st.Contract.Bidder()
		if n := st.RemainingDiscards(); n > 0 {
			legal := LegalDiscards(st.Hands[bidder], n)
			return AddToDog(bidder, legal[rnd.IntN(len(legal))])
		}
		return AckDog(bidder)
	case *Playing:
		for _, d := range st.OutstandingDebts() {
			for _, c := range st.Won[d.Debtor] {
				if !c.IsJoker() && (st.AllTricksPlayed() || rnd.IntN(2) == 0) {
					return JokerExchange(d.Debtor, c)
				}
			}
		}
		p := st.CurrentPlayer()
		legal := LegalPlays(st.Hands[p], st.Trick)
		return PlayCard(p, legal[rnd.IntN(len(legal))])
	}
	panic(fmt.Sprintf("no action for %s", state.Phase()))
}

// autoplay plays random legal actions until the hand completes
func autoplay(n int, seed uint64) (*Completed, []Transition) {
	rnd := mathrand.New(mathrand.NewPCG(seed, seed))
	state := seated(players(n), seed)
	var all []Transition
	for range 2000 {
		if done, ok := state.(*Completed); ok {
			return done, all
		}
		next, ts, err := Apply(state, randomAction(state, rnd))
		if err != nil {
			panic(err)
		}
		state = next
		all = append(all, ts...)
	}
	panic("hand did not complete")
}
