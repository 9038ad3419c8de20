package tarot

import (
	"fmt"

	"github.com/mcoot/tarot-go2/internal/dependencies/random"
)

const (
	MinPlayers = 3
	MaxPlayers = 5
)

// Deal is the result of dealing one hand
type Deal struct {
	Hands [][]Card
	Dog   []Card
}

// DealSizes returns the per-player hand size and dog size for a player count
func DealSizes(playerCount int) (handSize, dogSize int, err error) {
	switch playerCount {
	case 3:
		return 24, 6, nil
	case 4:
		return 18, 6, nil
	case 5:
		return 15, 3, nil
	default:
		return 0, 0, fmt.Errorf("cannot deal for %d players, need %d to %d", playerCount, MinPlayers, MaxPlayers)
	}
}

// Shuffle performs a Fisher-Yates shuffle of cards in place using rnd
func Shuffle(cards []Card, rnd random.Random) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// DealCards shuffles a fresh deck with rnd and partitions it into playerCount hands plus the dog.
// The same random sequence always produces the same deal.
func DealCards(playerCount int, rnd random.Random) (Deal, error) {
	handSize, dogSize, err := DealSizes(playerCount)
	if err != nil {
		return Deal{}, err
	}

	deck := NewDeck()
	Shuffle(deck, rnd)

	deal := Deal{Hands: make([][]Card, playerCount)}
	for i := range playerCount {
		hand := cloneCards(deck[i*handSize : (i+1)*handSize])
		SortCards(hand)
		deal.Hands[i] = hand
	}
	deal.Dog = cloneCards(deck[playerCount*handSize:])
	SortCards(deal.Dog)

	if len(deal.Dog) != dogSize {
		return Deal{}, invariantf("dog has %d cards, expected %d", len(deal.Dog), dogSize)
	}
	groups := append([][]Card{deal.Dog}, deal.Hands...)
	if err := verifyPartition(groups...); err != nil {
		return Deal{}, err
	}
	return deal, nil
}

// verifyPartition checks that the groups together hold every card of the deck exactly once
func verifyPartition(groups ...[]Card) error {
	seen := make(map[Card]bool, DeckSize)
	total := 0
	for _, group := range groups {
		for _, c := range group {
			if !c.IsValid() {
				return invariantf("unknown card %v", c)
			}
			if seen[c] {
				return invariantf("card %v appears more than once", c)
			}
			seen[c] = true
			total++
		}
	}
	if total != DeckSize {
		return invariantf("%d cards accounted for, expected %d", total, DeckSize)
	}
	return nil
}
