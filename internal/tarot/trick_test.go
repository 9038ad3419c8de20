package tarot

import (
	"testing"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/stretchr/testify/suite"
)

type TrickSuite struct {
	suite.Suite
	seats []model.PlayerID
}

func TestTrickSuite(t *testing.T) {
	suite.Run(t, new(TrickSuite))
}

func (s *TrickSuite) SetupTest() {
	s.seats = players(3)
}

func trick(names ...string) Trick {
	t := Trick{Cards: cards(names...)}
	t.LedSuit = ledSuit(t)
	return t
}

// Winner

func (s *TrickSuite) TestTrumpBeatsLedSuit() {
	s.Equal(2, WinningIndex(trick("heart-5", "heart-roi", "trump-3", "club-2")))
}

func (s *TrickSuite) TestJokerNeverWins() {
	s.Equal(2, WinningIndex(trick("trump-10", "joker", "trump-15")))
}

func (s *TrickSuite) TestHighestOfLedSuitWins() {
	s.Equal(1, WinningIndex(trick("spade-3", "spade-dame", "heart-roi", "spade-valet")))
}

func (s *TrickSuite) TestJokerLeadLetsSecondCardSetTheSuit() {
	t := trick("joker", "diamond-4", "diamond-9", "club-roi")

	s.Equal(SuitDiamond, t.LedSuit)
	s.Equal(2, WinningIndex(t))
}

// Legality

func (s *TrickSuite) TestMustFollowSuit() {
	hand := cards("heart-2", "club-3", "trump-4")

	s.ErrorIs(CheckPlay(card("club-3"), hand, trick("heart-7")), ErrIllegalCardPlay)
	s.ErrorIs(CheckPlay(card("trump-4"), hand, trick("heart-7")), ErrIllegalCardPlay)
	s.NoError(CheckPlay(card("heart-2"), hand, trick("heart-7")))
}

func (s *TrickSuite) TestMustTrumpWhenVoid() {
	hand := cards("club-3", "trump-4")

	s.ErrorIs(CheckPlay(card("club-3"), hand, trick("heart-7")), ErrIllegalCardPlay)
	s.NoError(CheckPlay(card("trump-4"), hand, trick("heart-7")))
}

func (s *TrickSuite) TestMustOvertrumpWhenAble() {
	hand := cards("trump-4", "trump-12")

	s.ErrorIs(CheckPlay(card("trump-4"), hand, trick("heart-7", "trump-9")), ErrIllegalCardPlay)
	s.NoError(CheckPlay(card("trump-12"), hand, trick("heart-7", "trump-9")))
}

func (s *TrickSuite) TestUndertrumpAllowedWhenUnableToOvertrump() {
	hand := cards("trump-4", "trump-6")

	s.NoError(CheckPlay(card("trump-4"), hand, trick("trump-9")))
}

func (s *TrickSuite) TestDiscardAllowedWithoutSuitOrTrumps() {
	hand := cards("club-3", "diamond-roi")

	s.NoError(CheckPlay(card("diamond-roi"), hand, trick("heart-7", "trump-2")))
}

func (s *TrickSuite) TestJokerAlwaysLegal() {
	hand := cards("heart-2", "joker")

	s.NoError(CheckPlay(Joker, hand, trick("heart-7")))
}

func (s *TrickSuite) TestAnyCardMayFollowALoneJoker() {
	hand := cards("heart-2", "trump-5")

	s.Equal(hand, LegalPlays(hand, trick("joker")))
}

func (s *TrickSuite) TestIllegalPlayLeavesStateUnchanged() {
	state := playing(s.seats, alice, Hands{
		alice: cards("heart-5", "spade-2"),
		bob:   cards("heart-roi", "club-2"),
		carol: cards("diamond-3", "diamond-4"),
	})
	var board BoardState = state
	board = mustApply(board, PlayCard(alice, card("heart-5")))
	before := Clone(board)

	next, ts, err := Apply(board, PlayCard(bob, card("club-2")))

	s.ErrorIs(err, ErrIllegalCardPlay)
	s.Nil(ts)
	s.Equal(before, next)
	s.Equal(before, board)
}

func (s *TrickSuite) TestPlayOutOfTurnRejected() {
	state := playing(s.seats, alice, Hands{
		alice: cards("heart-5"),
		bob:   cards("heart-roi"),
		carol: cards("diamond-3"),
	})

	_, _, err := Apply(state, PlayCard(bob, card("heart-roi")))

	s.ErrorIs(err, ErrOutOfTurn)
}

func (s *TrickSuite) TestCardNotInHandRejected() {
	state := playing(s.seats, alice, Hands{
		alice: cards("heart-5"),
		bob:   cards("heart-roi"),
		carol: cards("diamond-3"),
	})

	_, _, err := Apply(state, PlayCard(alice, card("heart-roi")))

	s.ErrorIs(err, ErrCardNotInHand)
}

func (s *TrickSuite) TestCompletedTrickGoesToWinner() {
	var board BoardState = playing(s.seats, alice, Hands{
		alice: cards("heart-5", "spade-2"),
		bob:   cards("heart-roi", "spade-3"),
		carol: cards("heart-1", "spade-4"),
	})
	board = mustApply(board, PlayCard(alice, card("heart-5")))
	board = mustApply(board, PlayCard(bob, card("heart-roi")))
	next, ts, err := Apply(board, PlayCard(carol, card("heart-1")))
	s.Require().NoError(err)

	p := next.(*Playing)
	s.Equal(bob, p.Leader)
	s.Equal(bob, p.CurrentPlayer())
	s.ElementsMatch(cards("heart-5", "heart-roi", "heart-1"), p.Won[bob])
	s.Empty(p.Trick.Cards)
	s.Equal([]TransitionType{TransitionCardPlayed, TransitionCompletedTrick}, transitionTypes(ts))
	s.Equal(CompletedTrickPayload{
		Trick: CompletedTrick{
			Trick:  Trick{Cards: cards("heart-5", "heart-roi", "heart-1"), Players: []model.PlayerID{alice, bob, carol}, LedSuit: SuitHeart},
			Winner: bob,
			Index:  0,
		},
		Points: 11,
	}, ts[1].Payload)
}

// Joker exchange

func (s *TrickSuite) jokerHands() *Playing {
	return playing(s.seats, alice, Hands{
		alice: cards("heart-roi", "spade-roi", "diamond-2"),
		bob:   cards("joker", "spade-5", "diamond-roi"),
		carol: cards("heart-2", "spade-3", "diamond-3"),
	})
}

// playTrick plays one card per player in order, returning the transitions of the last card
func (s *TrickSuite) playTrick(board BoardState, plays ...Action) (BoardState, []Transition) {
	var ts []Transition
	for _, a := range plays {
		var err error
		board, ts, err = Apply(board, a)
		s.Require().NoError(err, "%s plays %v", a.Player, a.Card)
	}
	return board, ts
}

func (s *TrickSuite) TestLosingJokerStaysWithOwnerAndOwesACard() {
	board, ts := s.playTrick(s.jokerHands(),
		PlayCard(alice, card("heart-roi")),
		PlayCard(bob, Joker),
		PlayCard(carol, card("heart-2")),
	)

	p := board.(*Playing)
	s.Equal([]Card{Joker}, p.Won[bob])
	s.ElementsMatch(cards("heart-roi", "heart-2"), p.Won[alice])
	s.Equal([]JokerExchangeState{{Debtor: bob, Creditor: alice, Trick: 0}}, p.OutstandingDebts())
	s.Equal([]TransitionType{TransitionCardPlayed, TransitionCompletedTrick, TransitionJokerOwed}, transitionTypes(ts))
}

func (s *TrickSuite) TestJokerOwnerOnWinningSideOwesNothing() {
	hands := s.jokerHands()
	hands.Partner = PartnerInfo{Card: &Card{Suit: SuitSpade, Rank: RankRoi}, Holder: bob}

	board, ts := s.playTrick(hands,
		PlayCard(alice, card("heart-roi")),
		PlayCard(bob, Joker),
		PlayCard(carol, card("heart-2")),
	)

	p := board.(*Playing)
	s.Equal([]Card{Joker}, p.Won[bob])
	s.Empty(p.Debts)
	s.NotContains(transitionTypes(ts), TransitionJokerOwed)
}

func (s *TrickSuite) TestDebtPaidDuringPlay() {
	board, _ := s.playTrick(s.jokerHands(),
		PlayCard(alice, card("heart-roi")),
		PlayCard(bob, Joker),
		PlayCard(carol, card("heart-2")),
		PlayCard(alice, card("diamond-2")),
		PlayCard(bob, card("diamond-roi")),
		PlayCard(carol, card("diamond-3")),
	)

	_, _, err := Apply(board, JokerExchange(carol, card("diamond-3")))
	s.ErrorIs(err, ErrIllegalExchange)
	_, _, err = Apply(board, JokerExchange(bob, card("heart-roi")))
	s.ErrorIs(err, ErrIllegalExchange)
	_, _, err = Apply(board, JokerExchange(bob, Joker))
	s.ErrorIs(err, ErrIllegalExchange)

	next, ts, err := Apply(board, JokerExchange(bob, card("diamond-2")))
	s.Require().NoError(err)

	p := next.(*Playing)
	s.Empty(p.OutstandingDebts())
	s.Contains(p.Won[alice], card("diamond-2"))
	s.NotContains(p.Won[bob], card("diamond-2"))
	s.Contains(p.Won[bob], Joker)
	s.Equal(JokerExchangedPayload{Debtor: bob, Creditor: alice, Card: card("diamond-2")}, ts[0].Payload)

	_, _, err = Apply(next, JokerExchange(bob, card("diamond-3")))
	s.ErrorIs(err, ErrIllegalExchange)

	final, _ := s.playTrick(next,
		PlayCard(bob, card("spade-5")),
		PlayCard(carol, card("spade-3")),
		PlayCard(alice, card("spade-roi")),
	)
	s.Equal(PhaseCompleted, final.Phase())
}

func (s *TrickSuite) TestHandWaitsForPayableDebt() {
	board, ts := s.playTrick(s.jokerHands(),
		PlayCard(alice, card("heart-roi")),
		PlayCard(bob, Joker),
		PlayCard(carol, card("heart-2")),
		PlayCard(alice, card("diamond-2")),
		PlayCard(bob, card("diamond-roi")),
		PlayCard(carol, card("diamond-3")),
		PlayCard(bob, card("spade-5")),
		PlayCard(carol, card("spade-3")),
		PlayCard(alice, card("spade-roi")),
	)

	p, ok := board.(*Playing)
	s.Require().True(ok)
	s.True(p.AllTricksPlayed())
	s.Len(p.OutstandingDebts(), 1)
	s.NotContains(transitionTypes(ts), TransitionGameCompleted)

	_, _, err := Apply(board, PlayCard(alice, card("spade-roi")))
	s.ErrorIs(err, ErrInvalidPhaseAction)

	final, ts, err := Apply(board, JokerExchange(bob, card("diamond-3")))
	s.Require().NoError(err)
	s.Equal(PhaseCompleted, final.Phase())
	s.Equal([]TransitionType{TransitionJokerExchanged, TransitionGameCompleted, TransitionPhaseChanged}, transitionTypes(ts))
}

func (s *TrickSuite) TestUnpayableDebtForfeitsTheJoker() {
	state := playing(s.seats, alice, Hands{
		alice: cards("heart-roi", "spade-roi"),
		bob:   cards("joker", "spade-5"),
		carol: cards("heart-2", "spade-3"),
	})

	board, ts := s.playTrick(state,
		PlayCard(alice, card("heart-roi")),
		PlayCard(bob, Joker),
		PlayCard(carol, card("heart-2")),
		PlayCard(alice, card("spade-roi")),
		PlayCard(bob, card("spade-5")),
		PlayCard(carol, card("spade-3")),
	)

	done, ok := board.(*Completed)
	s.Require().True(ok)
	s.Contains(done.Won[alice], Joker)
	s.Empty(done.Won[bob])
	s.Equal(JokerExchangedPayload{Debtor: bob, Creditor: alice, Card: Joker, Forfeit: true}, ts[len(ts)-3].Payload)
}

func (s *TrickSuite) TestJokerOnLastTrickGoesToWinner() {
	state := playing(s.seats, alice, Hands{
		alice: cards("heart-roi", "spade-roi"),
		bob:   cards("heart-3", "joker"),
		carol: cards("heart-2", "spade-3"),
	})

	board, _ := s.playTrick(state,
		PlayCard(alice, card("heart-roi")),
		PlayCard(bob, card("heart-3")),
		PlayCard(carol, card("heart-2")),
		PlayCard(alice, card("spade-roi")),
		PlayCard(bob, Joker),
		PlayCard(carol, card("spade-3")),
	)

	done := board.(*Completed)
	s.Contains(done.Won[alice], Joker)
}

func (s *TrickSuite) TestJokerLedToLastTrickWinsForASlammingSide() {
	state := playing(s.seats, alice, Hands{
		alice: cards("heart-roi", "joker"),
		bob:   cards("heart-3", "trump-20"),
		carol: cards("heart-2", "spade-3"),
	})

	board, _ := s.playTrick(state,
		PlayCard(alice, card("heart-roi")),
		PlayCard(bob, card("heart-3")),
		PlayCard(carol, card("heart-2")),
		PlayCard(alice, Joker),
		PlayCard(bob, card("trump-20")),
		PlayCard(carol, card("spade-3")),
	)

	done := board.(*Completed)
	s.Equal(alice, done.Tricks[1].Winner)
	s.Contains(done.Won[alice], card("trump-20"))
}

// Partner reveal

func (s *TrickSuite) TestPlayingCalledCardRevealsPartner() {
	seats := players(5)
	called := card("heart-roi")
	state := playing(seats, alice, Hands{
		alice: cards("heart-2"),
		bob:   cards("heart-roi"),
		carol: cards("heart-3"),
		dave:  cards("heart-4"),
		erin:  cards("heart-5"),
	})
	state.Partner = PartnerInfo{Card: &called, Holder: bob}

	board := mustApply(state, PlayCard(alice, card("heart-2")))
	next, ts, err := Apply(board, PlayCard(bob, called))
	s.Require().NoError(err)

	p := next.(*Playing)
	s.True(p.Partner.Revealed)
	s.Equal(bob, p.Partner.Partner())
	s.Equal(CardPlayedPayload{Card: called, Next: carol, Partner: true}, ts[0].Payload)
}

// Secret partner

func (s *TrickSuite) secretPartnerHands() *Playing {
	called := card("spade-roi")
	state := playing(players(5), alice, Hands{
		alice: cards("heart-roi", "diamond-2", "spade-2"),
		bob:   cards("joker", "diamond-roi", "spade-3"),
		carol: cards("heart-2", "diamond-3", "spade-4"),
		dave:  cards("heart-3", "club-2", "spade-roi"),
		erin:  cards("heart-4", "diamond-4", "spade-5"),
	})
	state.Partner = PartnerInfo{Card: &called, Holder: dave}
	return state
}

func (s *TrickSuite) TestDebtStaysBetweenItsPartiesWhilePartnerIsSecret() {
	board, ts := s.playTrick(s.secretPartnerHands(),
		PlayCard(alice, card("heart-roi")),
		PlayCard(bob, Joker),
		PlayCard(carol, card("heart-2")),
		PlayCard(dave, card("heart-3")),
		PlayCard(erin, card("heart-4")),
	)

	var owed []Transition
	for _, t := range ts {
		if t.Type == TransitionJokerOwed {
			owed = append(owed, t)
		}
	}
	s.Require().Len(owed, 2)
	s.Equal(bob, owed[0].PrivateTo)
	s.Equal(alice, owed[1].PrivateTo)

	s.Empty(View(board, carol).State.(*Playing).Debts)
	s.Len(View(board, bob).State.(*Playing).Debts, 1)
	s.Len(View(board, alice).State.(*Playing).Debts, 1)
}

func (s *TrickSuite) TestExchangeStaysBetweenItsPartiesWhilePartnerIsSecret() {
	board, _ := s.playTrick(s.secretPartnerHands(),
		PlayCard(alice, card("heart-roi")),
		PlayCard(bob, Joker),
		PlayCard(carol, card("heart-2")),
		PlayCard(dave, card("heart-3")),
		PlayCard(erin, card("heart-4")),
		PlayCard(alice, card("diamond-2")),
		PlayCard(bob, card("diamond-roi")),
		PlayCard(carol, card("diamond-3")),
		PlayCard(dave, card("club-2")),
		PlayCard(erin, card("diamond-4")),
	)
	s.False(board.(*Playing).Partner.Revealed)

	_, ts, err := Apply(board, JokerExchange(bob, card("diamond-2")))
	s.Require().NoError(err)

	s.Require().Len(ts, 2)
	s.Equal(bob, ts[0].PrivateTo)
	s.Equal(alice, ts[1].PrivateTo)
	for _, t := range ts {
		s.Equal(TransitionJokerExchanged, t.Type)
		s.False(t.IsPublic())
	}
}
