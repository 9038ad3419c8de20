package bot

import (
	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

// Hand strength needed for each contract
const (
	petiteStrength      = 40
	gardeStrength       = 56
	gardeSansStrength   = 71
	gardeContreStrength = 81
)

// GreedyStrategy bids on hand strength and takes every trick it cheaply can
type GreedyStrategy struct{}

// NewGreedyStrategy creates a new GreedyStrategy
func NewGreedyStrategy() *GreedyStrategy {
	return &GreedyStrategy{}
}

// HandStrength scores a hand for bidding: bouts and long trumps count most, then rois
// and face cards.
func HandStrength(hand []tarot.Card) int {
	strength := 0
	trumps := 0
	for _, c := range hand {
		switch {
		case c.IsBout():
			strength += 10
		case c.IsTrump():
			trumps++
			if c.Rank >= 16 {
				strength += 2
			}
		case c.Rank == tarot.RankRoi:
			strength += 6
		case c.Rank == tarot.RankDame:
			strength += 3
		case c.Rank >= tarot.RankValet:
			strength++
		}
	}
	return strength + 2*trumps
}

func (s *GreedyStrategy) ChooseBid(hand []tarot.Card, legal []tarot.BidValue) tarot.BidValue {
	strength := HandStrength(hand)
	var want tarot.BidValue
	switch {
	case strength >= gardeContreStrength:
		want = tarot.BidGardeContre
	case strength >= gardeSansStrength:
		want = tarot.BidGardeSans
	case strength >= gardeStrength:
		want = tarot.BidGarde
	case strength >= petiteStrength:
		want = tarot.BidPetite
	default:
		return 0
	}
	// Lowest legal bid not above what the hand supports
	for _, b := range legal {
		if b <= want {
			return b
		}
	}
	return 0
}

// ChoosePartnerCard calls the callable card in the suit where the hand is shortest
func (s *GreedyStrategy) ChoosePartnerCard(hand []tarot.Card, callable []tarot.Card) tarot.Card {
	best := callable[0]
	for _, c := range callable[1:] {
		if suitLength(hand, c.Suit) < suitLength(hand, best.Suit) {
			best = c
		}
	}
	return best
}

// ChooseDiscard puts the most valuable legal card in the dog, preferring suit cards
func (s *GreedyStrategy) ChooseDiscard(hand []tarot.Card, legal []tarot.Card) tarot.Card {
	best := legal[0]
	for _, c := range legal[1:] {
		if best.IsTrump() && !c.IsTrump() {
			best = c
			continue
		}
		if best.IsTrump() == c.IsTrump() && c.Points() > best.Points() {
			best = c
		}
	}
	return best
}

// ChooseCard plays the cheapest card that takes the trick, or the cheapest card at all when
// nothing wins. The Joker is kept for when nothing else is legal.
func (s *GreedyStrategy) ChooseCard(game *tarot.Playing, self model.PlayerID, legal []tarot.Card) tarot.Card {
	var winner, cheapest *tarot.Card
	for i := range legal {
		c := legal[i]
		if c.IsJoker() {
			continue
		}
		if wins(game.Trick, self, c) && (winner == nil || cost(c) < cost(*winner)) {
			winner = &legal[i]
		}
		if cheapest == nil || cost(c) < cost(*cheapest) {
			cheapest = &legal[i]
		}
	}
	switch {
	case winner != nil:
		return *winner
	case cheapest != nil:
		return *cheapest
	default:
		return legal[0]
	}
}

// wins reports whether c would take the trick as it stands
func wins(trick tarot.Trick, self model.PlayerID, c tarot.Card) bool {
	if len(trick.Cards) == 0 {
		return false
	}
	next := tarot.Trick{
		Cards:   append(append([]tarot.Card(nil), trick.Cards...), c),
		Players: append(append([]model.PlayerID(nil), trick.Players...), self),
	}
	return tarot.WinningIndex(next) == len(next.Cards)-1
}

// cost orders cards by what playing them gives away
func cost(c tarot.Card) int {
	v := int(c.Points()) * 100
	if c.IsTrump() {
		v += 50 + int(c.Rank)
	} else {
		v += int(c.Rank)
	}
	return v
}

func suitLength(hand []tarot.Card, suit tarot.Suit) int {
	n := 0
	for _, c := range hand {
		if c.Suit == suit {
			n++
		}
	}
	return n
}
