package tarot

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Suit is one of the four regular suits or the trump suit
type Suit string

const (
	SuitSpade   Suit = "spade"
	SuitHeart   Suit = "heart"
	SuitClub    Suit = "club"
	SuitDiamond Suit = "diamond"
	SuitTrump   Suit = "trump"
)

// RegularSuits lists the non-trump suits in canonical order
var RegularSuits = []Suit{SuitSpade, SuitHeart, SuitClub, SuitDiamond}

// Rank is a card's rank within its suit.
// Regular suits run 1-10 then Valet..Roi; trumps run 1-21 with the Joker at 0.
type Rank int

const (
	RankJoker    Rank = 0
	RankPetit    Rank = 1
	RankValet    Rank = 11
	RankCavalier Rank = 12
	RankDame     Rank = 13
	RankRoi      Rank = 14
	RankMonde    Rank = 21
)

// Card is a single tarot card
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// Joker is the Excuse
var Joker = Card{Suit: SuitTrump, Rank: RankJoker}

// DeckSize is the number of cards in a tarot deck
const DeckSize = 78

// HalfPoints holds card points doubled, so every card value is an exact integer
type HalfPoints int

// DeckHalfPoints is the card-point total of the whole deck (91 points)
const DeckHalfPoints HalfPoints = 182

// String returns h as a decimal point value, e.g. "45.5"
func (h HalfPoints) String() string {
	sign := ""
	v := int(h)
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v%2 == 0 {
		return sign + strconv.Itoa(v/2)
	}
	return sign + strconv.Itoa(v/2) + ".5"
}

// IsJoker reports whether c is the Excuse
func (c Card) IsJoker() bool {
	return c == Joker
}

// IsTrump reports whether c is a numbered trump. The Joker is not.
func (c Card) IsTrump() bool {
	return c.Suit == SuitTrump && c.Rank != RankJoker
}

// IsBout reports whether c is one of the three oudlers
func (c Card) IsBout() bool {
	return c.Suit == SuitTrump && (c.Rank == RankJoker || c.Rank == RankPetit || c.Rank == RankMonde)
}

// IsValid reports whether c exists in the deck
func (c Card) IsValid() bool {
	if c.Suit == SuitTrump {
		return c.Rank >= RankJoker && c.Rank <= RankMonde
	}
	return slices.Contains(RegularSuits, c.Suit) && c.Rank >= 1 && c.Rank <= RankRoi
}

// Points returns the card's value in half-points
func (c Card) Points() HalfPoints {
	if c.IsBout() {
		return 9
	}
	if c.Suit == SuitTrump {
		return 1
	}
	switch c.Rank {
	case RankRoi:
		return 9
	case RankDame:
		return 7
	case RankCavalier:
		return 5
	case RankValet:
		return 3
	default:
		return 1
	}
}

var rankNames = map[Rank]string{
	RankValet:    "valet",
	RankCavalier: "cavalier",
	RankDame:     "dame",
	RankRoi:      "roi",
}

func (c Card) String() string {
	if c.IsJoker() {
		return "joker"
	}
	if c.Suit != SuitTrump {
		if name, ok := rankNames[c.Rank]; ok {
			return string(c.Suit) + "-" + name
		}
	}
	return fmt.Sprintf("%s-%d", c.Suit, c.Rank)
}

// ParseCard parses the form produced by Card.String, e.g. "heart-roi", "trump-21" or "joker"
func ParseCard(s string) (Card, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "joker" || s == "excuse" {
		return Joker, nil
	}
	suit, rank, ok := strings.Cut(s, "-")
	if !ok {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	c := Card{Suit: Suit(suit)}
	found := false
	for r, name := range rankNames {
		if name == rank {
			c.Rank = r
			found = true
			break
		}
	}
	if !found {
		n, err := strconv.Atoi(rank)
		if err != nil {
			return Card{}, fmt.Errorf("invalid card rank %q", rank)
		}
		c.Rank = Rank(n)
	}
	if !c.IsValid() {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	return c, nil
}

// NewDeck returns the 78 cards in canonical order: the four regular suits, then trumps 1-21, then the Joker
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, suit := range RegularSuits {
		for rank := Rank(1); rank <= RankRoi; rank++ {
			deck = append(deck, Card{Suit: suit, Rank: rank})
		}
	}
	for rank := RankPetit; rank <= RankMonde; rank++ {
		deck = append(deck, Card{Suit: SuitTrump, Rank: rank})
	}
	return append(deck, Joker)
}

func suitOrder(s Suit) int {
	switch s {
	case SuitSpade:
		return 0
	case SuitHeart:
		return 1
	case SuitClub:
		return 2
	case SuitDiamond:
		return 3
	default:
		return 4
	}
}

func compareCards(a, b Card) int {
	if d := suitOrder(a.Suit) - suitOrder(b.Suit); d != 0 {
		return d
	}
	return int(a.Rank - b.Rank)
}

// SortCards sorts cards in canonical deck order in place
func SortCards(cards []Card) {
	slices.SortFunc(cards, compareCards)
}

// CountPoints sums the half-point value of cards
func CountPoints(cards []Card) HalfPoints {
	var total HalfPoints
	for _, c := range cards {
		total += c.Points()
	}
	return total
}

// CountBouts returns how many oudlers are in cards
func CountBouts(cards []Card) int {
	n := 0
	for _, c := range cards {
		if c.IsBout() {
			n++
		}
	}
	return n
}

func containsCard(cards []Card, c Card) bool {
	return slices.Contains(cards, c)
}

// removeCard returns cards without c; the second result is false when c was absent
func removeCard(cards []Card, c Card) ([]Card, bool) {
	i := slices.Index(cards, c)
	if i < 0 {
		return cards, false
	}
	return slices.Delete(cards, i, i+1), true
}

func hasSuit(cards []Card, suit Suit) bool {
	for _, c := range cards {
		if c.IsJoker() {
			continue
		}
		if c.Suit == suit {
			return true
		}
	}
	return false
}

func hasTrumpAbove(cards []Card, rank Rank) bool {
	for _, c := range cards {
		if c.IsTrump() && c.Rank > rank {
			return true
		}
	}
	return false
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	return slices.Clone(cards)
}
