package tarot

import (
	"testing"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/stretchr/testify/suite"
)

type BiddingSuite struct {
	suite.Suite
	state BoardState
}

func TestBiddingSuite(t *testing.T) {
	suite.Run(t, new(BiddingSuite))
}

func (s *BiddingSuite) SetupTest() {
	// alice deals, so bob speaks first
	s.state = seated(players(3), 11)
}

func (s *BiddingSuite) apply(a Action) []Transition {
	next, ts, err := Apply(s.state, a)
	s.Require().NoError(err)
	s.state = next
	return ts
}

func (s *BiddingSuite) reject(a Action, target error) {
	before := Clone(s.state)
	next, ts, err := Apply(s.state, a)
	s.ErrorIs(err, target)
	s.Nil(ts)
	s.Equal(before, next)
}

func (s *BiddingSuite) bidding() *Bidding {
	b, ok := s.state.(*Bidding)
	s.Require().True(ok, "phase is %s", s.state.Phase())
	return b
}

func (s *BiddingSuite) TestDealStartsBidding() {
	b := s.bidding()

	s.Equal(bob, b.CurrentBidder())
	s.Equal([]model.PlayerID{bob, carol, alice}, b.Bids.Remaining)
	for _, p := range players(3) {
		s.Len(b.Hands[p], 24)
	}
	s.Len(b.Dog, 6)
}

func (s *BiddingSuite) TestBidPlacedAnnouncesNextBidder() {
	ts := s.apply(PlaceBid(bob, BidPetite))

	s.Require().Len(ts, 1)
	s.Equal(TransitionBidPlaced, ts[0].Type)
	s.True(ts[0].IsPublic())
	s.Equal(BidPlacedPayload{Bid: Bid{Player: bob, Value: BidPetite}, Next: carol}, ts[0].Payload)
}

func (s *BiddingSuite) TestBidsMustStrictlyIncrease() {
	s.apply(PlaceBid(bob, BidGarde))

	s.reject(PlaceBid(carol, BidGarde), ErrIllegalBid)
	s.reject(PlaceBid(carol, BidPetite), ErrIllegalBid)
	s.apply(PlaceBid(carol, BidGardeSans))
}

func (s *BiddingSuite) TestUnknownBidValueRejected() {
	s.reject(PlaceBid(bob, BidValue(30)), ErrIllegalBid)
}

func (s *BiddingSuite) TestOutOfTurnBidRejected() {
	s.reject(PlaceBid(carol, BidPetite), ErrOutOfTurn)
}

func (s *BiddingSuite) TestUnseatedPlayerRejected() {
	s.reject(PlaceBid("mallory", BidPetite), ErrPlayerNotInGame)
}

func (s *BiddingSuite) TestPassedPlayerCannotBidAgain() {
	s.apply(PassBid(bob))
	s.apply(PlaceBid(carol, BidPetite))
	s.apply(PlaceBid(alice, BidGarde))

	s.reject(PlaceBid(bob, BidGardeSans), ErrIllegalBid)
	s.Equal(carol, s.bidding().CurrentBidder())
}

func (s *BiddingSuite) TestLastRemainingBidderWins() {
	s.apply(PlaceBid(bob, BidGarde))
	s.apply(PassBid(carol))
	s.apply(PlaceBid(alice, BidGardeSans))
	ts := s.apply(PassBid(bob))

	playing, ok := s.state.(*Playing)
	s.Require().True(ok)
	s.Equal(alice, playing.Bidder())
	s.Equal(BidGardeSans, playing.Contract.Winning.Value)
	s.False(playing.Contract.Uncontested)
	s.True(playing.AsideBidder)
	s.Len(playing.Aside, 6)

	types := transitionTypes(ts)
	s.Equal([]TransitionType{TransitionBidPlaced, TransitionBiddingCompleted, TransitionPhaseChanged}, types)
}

func (s *BiddingSuite) TestChelemGardeEndsBiddingImmediately() {
	s.apply(PlaceBid(bob, BidChelemGarde))

	playing, ok := s.state.(*Playing)
	s.Require().True(ok)
	s.Equal(bob, playing.Bidder())
	s.True(playing.Contract.Uncontested)
	s.False(playing.AsideBidder)
}

func (s *BiddingSuite) TestAllPassRedeals() {
	s.apply(PassBid(bob))
	s.apply(PassBid(carol))
	ts := s.apply(PassBid(alice))

	ng, ok := s.state.(*NewGame)
	s.Require().True(ok)
	s.Equal(1, ng.HandNumber)
	s.Equal(bob, ng.DealerID())
	s.Empty(ng.Ready)
	s.Equal([]TransitionType{TransitionBidPlaced, TransitionRedeal, TransitionPhaseChanged}, transitionTypes(ts))
}

func (s *BiddingSuite) TestRedealDealsDifferentCards() {
	first := s.bidding().Hands[bob]
	s.apply(PassBid(bob))
	s.apply(PassBid(carol))
	s.apply(PassBid(alice))
	for _, p := range players(3) {
		s.apply(PlayerReady(p))
	}

	b := s.bidding()
	s.Equal(carol, b.CurrentBidder())
	s.NotEqual(first, b.Hands[bob])
}

func (s *BiddingSuite) TestRussianNeedsSoleBidder() {
	s.reject(MakeCall(bob, CallRussian), ErrIllegalCall)

	s.apply(PlaceBid(bob, BidPetite))
	s.apply(MakeCall(bob, CallRussian))
	s.reject(MakeCall(bob, CallRussian), ErrActionAlreadyHappened)

	s.apply(PlaceBid(carol, BidGarde))
	s.reject(MakeCall(carol, CallRussian), ErrIllegalCall)
}

func (s *BiddingSuite) TestShowedCannotBeCalledDirectly() {
	s.reject(MakeCall(bob, CallShowed), ErrIllegalCall)
}

func (s *BiddingSuite) TestDeclaredSlamIsRecorded() {
	ts := s.apply(MakeCall(carol, CallDeclaredSlam))

	s.Equal(TransitionCallMade, ts[0].Type)
	s.True(s.bidding().Bids.Calls.Has(carol, CallDeclaredSlam))
}

func (s *BiddingSuite) TestDeclaredSlamBidderLeads() {
	s.apply(PlaceBid(bob, BidPetite))
	s.apply(MakeCall(alice, CallDeclaredSlam))
	s.apply(PlaceBid(carol, BidGardeSans))
	s.apply(MakeCall(carol, CallDeclaredSlam))
	s.apply(PassBid(alice))
	s.apply(PassBid(bob))

	playing, ok := s.state.(*Playing)
	s.Require().True(ok)
	s.Equal(carol, playing.Leader)
}

func (s *BiddingSuite) TestCardPlayRejectedDuringBidding() {
	hand := s.bidding().Hands[bob]
	s.reject(PlayCard(bob, hand[0]), ErrInvalidPhaseAction)
}

func (s *BiddingSuite) TestMessagesAreAcceptedInAnyPhase() {
	ts := s.apply(Message(carol, "bonne chance"))

	s.Equal(TransitionMessage, ts[0].Type)
	s.Equal([]ChatMessage{{Player: carol, Text: "bonne chance"}}, s.bidding().Chat)
}

func (s *BiddingSuite) TestLegalBids() {
	s.Equal(BidValues, LegalBids(nil))
	s.Equal([]BidValue{BidGardeContre, BidChelemGarde}, LegalBids(&Bid{Value: BidGardeSans}))
	s.Empty(LegalBids(&Bid{Value: BidChelemGarde}))
}

func transitionTypes(ts []Transition) []TransitionType {
	out := make([]TransitionType, len(ts))
	for i, t := range ts {
		out[i] = t.Type
	}
	return out
}
