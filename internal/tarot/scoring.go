package tarot

import (
	"maps"
	"slices"

	"github.com/mcoot/tarot-go2/internal/model"
)

// Outcome is a notable result recorded against a player
type Outcome string

const (
	OutcomeSlammed Outcome = "slammed"
	OutcomeOneLast Outcome = "one_last"
)

// CompletedGameState is the scored result of a hand. Every point value is in half-points and
// the deltas sum to zero.
type CompletedGameState struct {
	Bidder     model.PlayerID               `json:"bidder"`
	Partner    model.PlayerID               `json:"partner,omitempty"`
	CalledCard *Card                        `json:"called_card,omitempty"`
	Contract   BidValue                     `json:"contract"`
	Multiplier int                          `json:"multiplier"`
	Calls      Calls                        `json:"calls"`
	Outcomes   map[model.PlayerID][]Outcome `json:"outcomes,omitempty"`

	BidderSidePoints HalfPoints `json:"bidder_side_half_points"`
	Bouts            int        `json:"bouts"`
	Threshold        HalfPoints `json:"threshold_half_points"`
	BidderWon        bool       `json:"bidder_won"`
	Difference       HalfPoints `json:"difference_half_points"`

	ContractResult HalfPoints `json:"contract_result"`
	OneLastBonus   HalfPoints `json:"one_last_bonus"`
	SlamBonus      HalfPoints `json:"slam_bonus"`
	ShowBonus      HalfPoints `json:"show_bonus"`
	Total          HalfPoints `json:"total"` // Per defender, from the bidder side's point of view

	Deltas map[model.PlayerID]HalfPoints `json:"deltas"`
}

func (g CompletedGameState) clone() CompletedGameState {
	c := g
	if g.CalledCard != nil {
		card := *g.CalledCard
		c.CalledCard = &card
	}
	c.Calls = g.Calls.clone()
	if g.Outcomes != nil {
		c.Outcomes = make(map[model.PlayerID][]Outcome, len(g.Outcomes))
		for p, o := range g.Outcomes {
			c.Outcomes[p] = slices.Clone(o)
		}
	}
	c.Deltas = maps.Clone(g.Deltas)
	return c
}

// Threshold returns the half-points the bidder's side needs with the given number of bouts
func Threshold(bouts int) HalfPoints {
	switch {
	case bouts >= 3:
		return 72
	case bouts == 2:
		return 82
	case bouts == 1:
		return 102
	default:
		return 112
	}
}

// ContractResult returns (d + sign(d)*base) * multiplier, with sign(0) = +1.
// d and the result are half-points; base is in points.
func ContractResult(d HalfPoints, base, multiplier int) HalfPoints {
	sign := HalfPoints(1)
	if d < 0 {
		sign = -1
	}
	return (d + sign*HalfPoints(2*base)) * HalfPoints(multiplier)
}

// SplitScores divides total between the players. Each defender receives -total and the bidder's
// side receives total for each defender; a partner takes share of that and the bidder the rest.
func SplitScores(seats []model.PlayerID, bidder, partner model.PlayerID, share Fraction, total HalfPoints) map[model.PlayerID]HalfPoints {
	deltas := make(map[model.PlayerID]HalfPoints, len(seats))
	defenders := 0
	for _, p := range seats {
		if p == bidder || (partner != "" && p == partner) {
			continue
		}
		deltas[p] = -total
		defenders++
	}
	side := total * HalfPoints(defenders)
	if partner == "" || partner == bidder {
		deltas[bidder] = side
		return deltas
	}
	partnerShare := side * HalfPoints(share.Num) / HalfPoints(share.Den)
	deltas[partner] = partnerShare
	deltas[bidder] = side - partnerShare
	return deltas
}

func score(s *Playing) (CompletedGameState, error) {
	rules := s.Rules
	bidder := s.Bidder()

	var sideCards []Card
	var all HalfPoints
	for p, cards := range s.Won {
		all += CountPoints(cards)
		if s.OnBidderSide(p) {
			sideCards = append(sideCards, cards...)
		}
	}
	all += CountPoints(s.Aside)
	if all != DeckHalfPoints {
		return CompletedGameState{}, invariantf("hand totals %s points, expected %s", all, DeckHalfPoints)
	}
	if s.AsideBidder {
		sideCards = append(sideCards, s.Aside...)
	}

	points := CountPoints(sideCards)
	bouts := CountBouts(sideCards)
	threshold := Threshold(bouts)
	diff := points - threshold
	won := diff >= 0

	russian := s.Contract.Uncontested && s.Contract.Calls.Has(bidder, CallRussian)
	multiplier := rules.Multiplier(s.Contract.Winning.Value, russian)
	contractResult := ContractResult(diff, rules.ContractBase, multiplier)

	outcomes := make(map[model.PlayerID][]Outcome)
	oneLast := s.oneLastBonus(outcomes, multiplier)
	slam := s.slamBonus(outcomes)

	var showBonus HalfPoints
	for _, sh := range s.Shows.Shows {
		bonus := HalfPoints(2 * rules.ShowBonuses.For(sh.Level))
		if won {
			showBonus += bonus
		} else {
			showBonus -= bonus
		}
	}

	total := contractResult + oneLast + slam + showBonus
	partner := s.Partner.Holder

	result := CompletedGameState{
		Bidder:           bidder,
		Partner:          partner,
		Contract:         s.Contract.Winning.Value,
		Multiplier:       multiplier,
		Calls:            s.Contract.Calls.clone(),
		Outcomes:         outcomes,
		BidderSidePoints: points,
		Bouts:            bouts,
		Threshold:        threshold,
		BidderWon:        won,
		Difference:       diff,
		ContractResult:   contractResult,
		OneLastBonus:     oneLast,
		SlamBonus:        slam,
		ShowBonus:        showBonus,
		Total:            total,
		Deltas:           SplitScores(s.Seats, bidder, partner, rules.PartnerShare, total),
	}
	if s.Partner.Card != nil {
		card := *s.Partner.Card
		result.CalledCard = &card
	}
	if len(result.Outcomes) == 0 {
		result.Outcomes = nil
	}
	return result, nil
}

// oneLastBonus scores the Petit taking the last trick for its side
func (s *Playing) oneLastBonus(outcomes map[model.PlayerID][]Outcome, multiplier int) HalfPoints {
	if len(s.Tricks) == 0 {
		return 0
	}
	last := s.Tricks[len(s.Tricks)-1]
	for i, c := range last.Cards {
		if c != (Card{Suit: SuitTrump, Rank: RankPetit}) {
			continue
		}
		player := last.Players[i]
		side := s.OnBidderSide(player)
		if side != s.OnBidderSide(last.Winner) {
			return 0
		}
		outcomes[player] = append(outcomes[player], OutcomeOneLast)
		bonus := HalfPoints(2 * s.Rules.OneLastBonus * multiplier)
		if side {
			return bonus
		}
		return -bonus
	}
	return 0
}

// slamBonus scores realised, declared and failed slams for both sides
func (s *Playing) slamBonus(outcomes map[model.PlayerID][]Outcome) HalfPoints {
	rules := s.Rules
	bidderTricks := 0
	for _, t := range s.Tricks {
		if s.OnBidderSide(t.Winner) {
			bidderTricks++
		}
	}
	bidderSlam := bidderTricks == len(s.Tricks) && len(s.Tricks) > 0
	defenceSlam := bidderTricks == 0 && len(s.Tricks) > 0

	bidderDeclared, defenceDeclared := false, false
	for _, p := range s.Seats {
		if !s.Contract.Calls.Has(p, CallDeclaredSlam) {
			continue
		}
		if s.OnBidderSide(p) {
			bidderDeclared = true
		} else {
			defenceDeclared = true
		}
	}

	var bonus HalfPoints
	switch {
	case bidderSlam && bidderDeclared:
		bonus += HalfPoints(2 * rules.DeclaredSlamBonus)
	case bidderSlam:
		bonus += HalfPoints(2 * rules.SlamBonus)
	case bidderDeclared:
		bonus -= HalfPoints(2 * rules.FailedSlamPenalty)
	}
	switch {
	case defenceSlam && defenceDeclared:
		bonus -= HalfPoints(2 * rules.DeclaredSlamBonus)
	case defenceSlam:
		bonus -= HalfPoints(2 * rules.SlamBonus)
	case defenceDeclared:
		bonus += HalfPoints(2 * rules.FailedSlamPenalty)
	}

	if bidderSlam || defenceSlam {
		for _, p := range s.Seats {
			if s.OnBidderSide(p) == bidderSlam {
				outcomes[p] = append(outcomes[p], OutcomeSlammed)
			}
		}
	}
	return bonus
}
