package tarot

import (
	"testing"

	"github.com/mcoot/tarot-go2/internal/dependencies/mocks"
	"github.com/mcoot/tarot-go2/internal/dependencies/random"
	"github.com/stretchr/testify/suite"
)

type DealSuite struct {
	suite.Suite
}

func TestDealSuite(t *testing.T) {
	suite.Run(t, new(DealSuite))
}

func (s *DealSuite) TestDealPartitionsTheDeck() {
	for _, tc := range []struct {
		players, hand, dog int
	}{
		{3, 24, 6},
		{4, 18, 6},
		{5, 15, 3},
	} {
		d, err := DealCards(tc.players, random.NewSeeded(7))
		s.Require().NoError(err)

		s.Len(d.Hands, tc.players)
		for _, h := range d.Hands {
			s.Len(h, tc.hand)
		}
		s.Len(d.Dog, tc.dog)
		s.NoError(verifyPartition(append(d.Hands, d.Dog)...))
	}
}

func (s *DealSuite) TestDealIsDeterministicForASeed() {
	a, err := DealCards(4, random.NewSeeded(99))
	s.Require().NoError(err)
	b, err := DealCards(4, random.NewSeeded(99))
	s.Require().NoError(err)

	s.Equal(a, b)
}

func (s *DealSuite) TestDifferentSeedsDealDifferentHands() {
	a, _ := DealCards(3, random.NewSeeded(1))
	b, _ := DealCards(3, random.NewSeeded(2))

	s.NotEqual(a.Hands, b.Hands)
}

func (s *DealSuite) TestDealHandsAreSorted() {
	d, err := DealCards(5, random.NewSeeded(3))
	s.Require().NoError(err)

	for _, h := range d.Hands {
		sorted := cloneCards(h)
		SortCards(sorted)
		s.Equal(sorted, h)
	}
}

func (s *DealSuite) TestDealWithUnshuffledDeck() {
	// Always swapping with the last position leaves the deck in order
	rnd := mocks.NewMockRandom()
	for i := DeckSize - 1; i > 0; i-- {
		rnd.QueueIntn(i)
	}

	d, err := DealCards(3, rnd)
	s.Require().NoError(err)

	deck := NewDeck()
	s.Equal(deck[:24], d.Hands[0])
	s.Equal(sortedCopy(deck[72:]), d.Dog)
}

func (s *DealSuite) TestDealRejectsBadPlayerCounts() {
	for _, n := range []int{0, 1, 2, 6} {
		_, err := DealCards(n, random.NewSeeded(1))
		s.Error(err)
		s.False(IsInvariant(err))
	}
}

func (s *DealSuite) TestVerifyPartitionDetectsDuplicates() {
	deck := NewDeck()
	deck[1] = deck[0]

	err := verifyPartition(deck)

	s.True(IsInvariant(err))
	s.Equal("invariant_violation", ErrorCode(err))
}

func (s *DealSuite) TestVerifyPartitionDetectsMissingCards() {
	err := verifyPartition(NewDeck()[1:])

	s.True(IsInvariant(err))
}

func sortedCopy(c []Card) []Card {
	out := cloneCards(c)
	SortCards(out)
	return out
}
