package tarot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ShowSuite struct {
	suite.Suite
	state BoardState
}

func TestShowSuite(t *testing.T) {
	suite.Run(t, new(ShowSuite))
}

func trumps(from, to int) []Card {
	var out []Card
	for r := from; r <= to; r++ {
		out = append(out, card(fmt.Sprintf("trump-%d", r)))
	}
	return out
}

func (s *ShowSuite) SetupTest() {
	aliceHand := append(trumps(1, 14), Joker, card("heart-2"))
	bobHand := cards("heart-3", "heart-4")
	carolHand := restOfDeck(aliceHand, bobHand)
	s.state = &Bidding{
		Table: testTable(players(3)),
		Hands: Hands{alice: aliceHand, bob: bobHand, carol: carolHand},
		Dog:   []Card{},
		Bids:  CurrentBids{Remaining: players(3), Calls: Calls{}},
	}
}

func (s *ShowSuite) apply(a Action) []Transition {
	next, ts, err := Apply(s.state, a)
	s.Require().NoError(err)
	s.state = next
	return ts
}

func (s *ShowSuite) shows() ShowLedger {
	return s.state.(*Bidding).Shows
}

func (s *ShowSuite) TestShowThirteenTrumpsIsASingleShow() {
	ts := s.apply(ShowTrump(alice, trumps(1, 13)))

	s.Equal(TransitionTrumpShown, ts[0].Type)
	s.Equal(TrumpShownPayload{Cards: trumps(1, 13), Level: ShowSingle}, ts[0].Payload)
	s.True(s.state.(*Bidding).Bids.Calls.Has(alice, CallShowed))
	s.Require().NotNil(s.shows().Pending)
	s.ElementsMatch(players(3)[1:], s.shows().Pending.Unacknowledged)
}

func (s *ShowSuite) TestShowWithJokerAndEveryTrumpIsADoubleShow() {
	ts := s.apply(ShowTrump(alice, append(trumps(1, 14), Joker)))

	s.Equal(ShowDouble, ts[0].Payload.(TrumpShownPayload).Level)
}

func (s *ShowSuite) TestJokerOnlyWithEveryTrump() {
	_, _, err := Apply(s.state, ShowTrump(alice, append(trumps(1, 12), Joker)))
	s.ErrorIs(err, ErrIllegalShow)
}

func (s *ShowSuite) TestTooFewTrumpsRejected() {
	_, _, err := Apply(s.state, ShowTrump(alice, trumps(1, 12)))
	s.ErrorIs(err, ErrIllegalShow)
}

func (s *ShowSuite) TestShowCardsMustBeHeldTrumps() {
	_, _, err := Apply(s.state, ShowTrump(alice, append(trumps(1, 12), card("heart-2"))))
	s.ErrorIs(err, ErrIllegalShow)

	_, _, err = Apply(s.state, ShowTrump(alice, append(trumps(1, 12), card("trump-1"))))
	s.ErrorIs(err, ErrIllegalShow)

	_, _, err = Apply(s.state, ShowTrump(alice, trumps(5, 17)))
	s.ErrorIs(err, ErrCardNotInHand)
}

func (s *ShowSuite) TestEveryOtherPlayerAcknowledges() {
	s.apply(ShowTrump(alice, trumps(1, 13)))

	_, _, err := Apply(s.state, AckTrumpShow(alice))
	s.ErrorIs(err, ErrActionAlreadyHappened)

	ts := s.apply(AckTrumpShow(bob))
	s.Equal(TrumpShowAcknowledgedPayload{ShownBy: alice, Complete: false}, ts[0].Payload)
	s.NotNil(s.shows().Pending)

	ts = s.apply(AckTrumpShow(carol))
	s.Equal(TrumpShowAcknowledgedPayload{ShownBy: alice, Complete: true}, ts[0].Payload)
	s.Nil(s.shows().Pending)
	s.Equal([]TrumpShow{{Player: alice, Cards: trumps(1, 13), Level: ShowSingle}}, s.shows().Shows)

	_, _, err = Apply(s.state, AckTrumpShow(bob))
	s.ErrorIs(err, ErrIllegalShow)
}

func (s *ShowSuite) TestOneShowAtATime() {
	s.apply(ShowTrump(alice, trumps(1, 13)))

	_, _, err := Apply(s.state, ShowTrump(carol, trumps(15, 21)))
	s.ErrorIs(err, ErrAwaitingAcknowledgement)
}

func (s *ShowSuite) TestPlayerShowsOnlyOnce() {
	s.apply(ShowTrump(alice, trumps(1, 13)))
	s.apply(AckTrumpShow(bob))
	s.apply(AckTrumpShow(carol))

	_, _, err := Apply(s.state, ShowTrump(alice, trumps(1, 14)))
	s.ErrorIs(err, ErrIllegalShow)
}

func (s *ShowSuite) TestShowDuringFirstTrickBeforePlaying() {
	aliceHand := append(trumps(1, 13), card("heart-2"))
	bobHand := append(append(trumps(14, 21), Joker), cards("heart-3", "heart-4", "heart-5", "heart-6", "heart-7")...)
	carolHand := cards("spade-1", "spade-2", "spade-3", "spade-4", "spade-5", "spade-6", "spade-7", "spade-8", "spade-9", "spade-10", "spade-valet", "spade-cavalier", "spade-dame", "spade-roi")
	var board BoardState = playing(players(3), alice, Hands{alice: aliceHand, bob: bobHand, carol: carolHand})

	board = mustApply(board, ShowTrump(alice, trumps(1, 13)))

	_, _, err := Apply(board, PlayCard(alice, card("heart-2")))
	s.ErrorIs(err, ErrAwaitingAcknowledgement)

	board = mustApply(board, AckTrumpShow(bob))
	board = mustApply(board, AckTrumpShow(carol))
	board = mustApply(board, PlayCard(alice, card("heart-2")))

	_, _, err = Apply(board, ShowTrump(alice, trumps(1, 13)))
	s.ErrorIs(err, ErrIllegalShow)
	s.Len(board.(*Playing).Shows.Shows, 1)
}
