package bot

import (
	"github.com/mcoot/tarot-go2/internal/dependencies/random"
	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

// RandomStrategy makes uniformly random legal choices. It bids one time in three,
// and then only one of the two lowest contracts available.
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

func (s *RandomStrategy) ChooseBid(hand []tarot.Card, legal []tarot.BidValue) tarot.BidValue {
	if s.random.Intn(3) != 0 {
		return 0
	}
	return legal[s.random.Intn(min(2, len(legal)))]
}

func (s *RandomStrategy) ChoosePartnerCard(hand []tarot.Card, callable []tarot.Card) tarot.Card {
	return callable[s.random.Intn(len(callable))]
}

func (s *RandomStrategy) ChooseDiscard(hand []tarot.Card, legal []tarot.Card) tarot.Card {
	return legal[s.random.Intn(len(legal))]
}

func (s *RandomStrategy) ChooseCard(game *tarot.Playing, self model.PlayerID, legal []tarot.Card) tarot.Card {
	return legal[s.random.Intn(len(legal))]
}
