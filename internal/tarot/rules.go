package tarot

import (
	"fmt"

	"github.com/mcoot/tarot-go2/internal/model"
)

// BidValue is a contract level; 160 is the highest
type BidValue int

const (
	BidPetite      BidValue = 10
	BidGarde       BidValue = 20
	BidGardeSans   BidValue = 40
	BidGardeContre BidValue = 80
	BidChelemGarde BidValue = 160
)

// BidValues lists every contract in ascending order
var BidValues = []BidValue{BidPetite, BidGarde, BidGardeSans, BidGardeContre, BidChelemGarde}

// IsValid reports whether b is one of the contract levels
func (b BidValue) IsValid() bool {
	switch b {
	case BidPetite, BidGarde, BidGardeSans, BidGardeContre, BidChelemGarde:
		return true
	}
	return false
}

// Name returns the contract's traditional name
func (b BidValue) Name() string {
	switch b {
	case BidPetite:
		return "Petite"
	case BidGarde:
		return "Garde"
	case BidGardeSans:
		return "Garde sans"
	case BidGardeContre:
		return "Garde contre"
	case BidChelemGarde:
		return "Chelem-garde"
	default:
		return fmt.Sprintf("bid(%d)", int(b))
	}
}

// DogDisposition decides what happens to the dog once the contract is known
type DogDisposition string

const (
	DispositionExchange DogDisposition = "exchange" // Revealed, taken by the bidder who discards the same number
	DispositionBidder   DogDisposition = "bidder"   // Set aside unseen, counts for the bidder
	DispositionDefence  DogDisposition = "defence"  // Set aside unseen, counts for the defence
)

// ShowLevel is the size class of a trump show
type ShowLevel string

const (
	ShowSingle ShowLevel = "single"
	ShowDouble ShowLevel = "double"
	ShowTriple ShowLevel = "triple"
)

// ShowThresholds are the minimum trump counts for each show level
type ShowThresholds struct {
	Single int `yaml:"single" json:"single"`
	Double int `yaml:"double" json:"double"`
	Triple int `yaml:"triple" json:"triple"`
}

// Level returns the show level reached by count trumps, or "" below the single threshold
func (t ShowThresholds) Level(count int) ShowLevel {
	switch {
	case t.Triple > 0 && count >= t.Triple:
		return ShowTriple
	case t.Double > 0 && count >= t.Double:
		return ShowDouble
	case t.Single > 0 && count >= t.Single:
		return ShowSingle
	default:
		return ""
	}
}

// ShowBonuses are the bonus points per show level
type ShowBonuses struct {
	Single int `yaml:"single" json:"single"`
	Double int `yaml:"double" json:"double"`
	Triple int `yaml:"triple" json:"triple"`
}

// For returns the bonus for a show level
func (b ShowBonuses) For(level ShowLevel) int {
	switch level {
	case ShowSingle:
		return b.Single
	case ShowDouble:
		return b.Double
	case ShowTriple:
		return b.Triple
	default:
		return 0
	}
}

// Fraction is an exact ratio
type Fraction struct {
	Num int `yaml:"num" json:"num"`
	Den int `yaml:"den" json:"den"`
}

// RuleSet holds every configurable scoring and contract parameter.
// Bonus fields are in card points; the engine converts them to half-points.
// A RuleSet is treated as read-only once a hand has started.
type RuleSet struct {
	Name              string                      `yaml:"name" json:"name"`
	Multipliers       map[BidValue]int            `yaml:"multipliers" json:"multipliers"`
	ContractBase      int                         `yaml:"contract_base" json:"contract_base"`
	OneLastBonus      int                         `yaml:"one_last_bonus" json:"one_last_bonus"`
	DeclaredSlamBonus int                         `yaml:"declared_slam_bonus" json:"declared_slam_bonus"`
	SlamBonus         int                         `yaml:"slam_bonus" json:"slam_bonus"`
	FailedSlamPenalty int                         `yaml:"failed_slam_penalty" json:"failed_slam_penalty"`
	ShowThresholds    map[int]ShowThresholds      `yaml:"show_thresholds" json:"show_thresholds"`
	ShowBonuses       ShowBonuses                 `yaml:"show_bonuses" json:"show_bonuses"`
	PartnerShare      Fraction                    `yaml:"partner_share" json:"partner_share"`
	Dog               map[BidValue]DogDisposition `yaml:"dog" json:"dog"`
}

// Multiplier returns the score multiplier for a contract, doubled for a russian call
func (r RuleSet) Multiplier(bid BidValue, russian bool) int {
	m, ok := r.Multipliers[bid]
	if !ok {
		m = int(bid) / 10
	}
	if russian {
		m *= 2
	}
	return m
}

// DogFor returns the dog disposition for a contract
func (r RuleSet) DogFor(bid BidValue) DogDisposition {
	if d, ok := r.Dog[bid]; ok {
		return d
	}
	if bid <= BidGarde {
		return DispositionExchange
	}
	if bid == BidGardeSans {
		return DispositionBidder
	}
	return DispositionDefence
}

// ShowLevelFor returns the show level of count trumps at a table of playerCount
func (r RuleSet) ShowLevelFor(playerCount, count int) ShowLevel {
	return r.ShowThresholds[playerCount].Level(count)
}

// Validate checks the rule set is internally consistent
func (r RuleSet) Validate() error {
	for bid, m := range r.Multipliers {
		if !bid.IsValid() {
			return fmt.Errorf("multiplier for unknown contract %d", int(bid))
		}
		if m <= 0 {
			return fmt.Errorf("multiplier for %s must be positive", bid.Name())
		}
	}
	for bid, d := range r.Dog {
		if !bid.IsValid() {
			return fmt.Errorf("dog rule for unknown contract %d", int(bid))
		}
		if d != DispositionExchange && d != DispositionBidder && d != DispositionDefence {
			return fmt.Errorf("unknown dog disposition %q", d)
		}
	}
	if r.PartnerShare.Den <= 0 || r.PartnerShare.Num < 0 || r.PartnerShare.Num > r.PartnerShare.Den {
		return fmt.Errorf("partner share %d/%d is not a fraction in [0,1]", r.PartnerShare.Num, r.PartnerShare.Den)
	}
	if r.ContractBase < 0 {
		return fmt.Errorf("contract base must not be negative")
	}
	return nil
}

func defaultShowThresholds() map[int]ShowThresholds {
	return map[int]ShowThresholds{
		3: {Single: 13, Double: 15, Triple: 18},
		4: {Single: 10, Double: 13, Triple: 15},
		5: {Single: 8, Double: 10, Triple: 13},
	}
}

func defaultDog() map[BidValue]DogDisposition {
	return map[BidValue]DogDisposition{
		BidPetite:      DispositionExchange,
		BidGarde:       DispositionExchange,
		BidGardeSans:   DispositionBidder,
		BidGardeContre: DispositionDefence,
		BidChelemGarde: DispositionDefence,
	}
}

// DefaultRules returns the standard rule set: multiplier is the bid divided by ten and the
// contract result is the plain margin over the threshold
func DefaultRules() RuleSet {
	return RuleSet{
		Name: "standard",
		Multipliers: map[BidValue]int{
			BidPetite:      1,
			BidGarde:       2,
			BidGardeSans:   4,
			BidGardeContre: 8,
			BidChelemGarde: 16,
		},
		ContractBase:      0,
		OneLastBonus:      10,
		DeclaredSlamBonus: 400,
		SlamBonus:         200,
		FailedSlamPenalty: 200,
		ShowThresholds:    defaultShowThresholds(),
		ShowBonuses:       ShowBonuses{Single: 20, Double: 30, Triple: 40},
		PartnerShare:      Fraction{Num: 1, Den: 3},
		Dog:               defaultDog(),
	}
}

// BakerBengtsonRules returns the Baker-Bengtson preset: a fixed 25 point contract base and
// tournament multipliers
func BakerBengtsonRules() RuleSet {
	r := DefaultRules()
	r.Name = "baker-bengtson"
	r.Multipliers = map[BidValue]int{
		BidPetite:      1,
		BidGarde:       2,
		BidGardeSans:   4,
		BidGardeContre: 6,
		BidChelemGarde: 8,
	}
	r.ContractBase = 25
	return r
}

// RulesFor returns the preset selected by settings
func RulesFor(settings model.GameSettings) RuleSet {
	if settings.BakerBengtsonVariant {
		return BakerBengtsonRules()
	}
	return DefaultRules()
}
