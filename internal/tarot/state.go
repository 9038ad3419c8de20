package tarot

import (
	"slices"

	"github.com/mcoot/tarot-go2/internal/model"
)

// Phase names a BoardState variant
type Phase string

const (
	PhaseNewGame     Phase = "new_game"
	PhaseBidding     Phase = "bidding"
	PhasePartnerCall Phase = "partner_call"
	PhaseDogReveal   Phase = "dog_reveal"
	PhaseDogExchange Phase = "dog_exchange"
	PhasePlaying     Phase = "playing"
	PhaseCompleted   Phase = "completed"
)

// BoardState is one hand's authoritative state. Exactly one variant is live at a time:
// *NewGame, *Bidding, *PartnerCall, *DogReveal, *DogExchange, *Playing or *Completed.
// Only Apply produces successors.
type BoardState interface {
	Phase() Phase
	table() *Table
	clone() BoardState
	// cardGroups returns every card location so the deck partition can be verified
	cardGroups() [][]Card
}

// ChatMessage is one message action, kept in the table's log
type ChatMessage struct {
	Player model.PlayerID `json:"player"`
	Text   string         `json:"text"`
}

// Table holds what every variant needs: seating, dealer, rules and the chat log
type Table struct {
	Seats      []model.PlayerID   `json:"seats"`
	Dealer     int                `json:"dealer"`
	Rules      RuleSet            `json:"rules"`
	Settings   model.GameSettings `json:"settings"`
	Seed       uint64             `json:"seed,omitempty"` // Hidden from views: it determines every deal
	HandNumber int                `json:"hand_number"`
	Chat       []ChatMessage      `json:"chat,omitempty"`
}

func (t *Table) table() *Table { return t }

func (t *Table) copy() Table {
	c := *t
	c.Seats = slices.Clone(t.Seats)
	c.Chat = slices.Clone(t.Chat)
	return c
}

// IsSeated reports whether p is one of the table's players
func (t *Table) IsSeated(p model.PlayerID) bool {
	return slices.Contains(t.Seats, p)
}

// SeatOf returns p's seat index, or -1
func (t *Table) SeatOf(p model.PlayerID) int {
	return slices.Index(t.Seats, p)
}

// DealerID returns the dealing player
func (t *Table) DealerID() model.PlayerID {
	if len(t.Seats) == 0 {
		return ""
	}
	return t.Seats[t.Dealer%len(t.Seats)]
}

// firstToSpeak is the player left of the dealer
func (t *Table) firstToSpeak() model.PlayerID {
	return t.Seats[(t.Dealer+1)%len(t.Seats)]
}

// rotation returns every seat starting from first
func (t *Table) rotation(first model.PlayerID) []model.PlayerID {
	start := t.SeatOf(first)
	out := make([]model.PlayerID, len(t.Seats))
	for i := range t.Seats {
		out[i] = t.Seats[(start+i)%len(t.Seats)]
	}
	return out
}

// NewTable creates the table for a room's first hand
func NewTable(settings model.GameSettings, rules RuleSet, seed uint64) Table {
	return Table{
		Rules:    rules,
		Settings: settings,
		Seed:     seed,
	}
}

// Hands maps each player to the cards they hold
type Hands map[model.PlayerID][]Card

func (h Hands) clone() Hands {
	if h == nil {
		return nil
	}
	c := make(Hands, len(h))
	for p, cards := range h {
		c[p] = cloneCards(cards)
	}
	return c
}

func (h Hands) groups() [][]Card {
	out := make([][]Card, 0, len(h))
	for _, cards := range h {
		out = append(out, cards)
	}
	return out
}

// Call is a declaration made by a player during the hand
type Call string

const (
	CallDeclaredSlam Call = "declared_slam"
	CallRussian      Call = "russian"
	CallShowed       Call = "showed"
)

// Calls maps each player to the calls they have made
type Calls map[model.PlayerID][]Call

func (c Calls) clone() Calls {
	out := make(Calls, len(c))
	for p, calls := range c {
		out[p] = slices.Clone(calls)
	}
	return out
}

// Has reports whether p made call
func (c Calls) Has(p model.PlayerID, call Call) bool {
	return slices.Contains(c[p], call)
}

// Bid is a placed bid or, when Pass is set, a pass
type Bid struct {
	Player model.PlayerID `json:"player"`
	Value  BidValue       `json:"value,omitempty"`
	Pass   bool           `json:"pass,omitempty"`
}

// CurrentBids is the auction ledger while bidding is open
type CurrentBids struct {
	Placed    []Bid            `json:"placed"`
	Remaining []model.PlayerID `json:"remaining"`
	High      *Bid             `json:"high,omitempty"`
	Turn      int              `json:"turn"`
	Calls     Calls            `json:"calls"`
}

func (b CurrentBids) clone() CurrentBids {
	c := b
	c.Placed = slices.Clone(b.Placed)
	c.Remaining = slices.Clone(b.Remaining)
	if b.High != nil {
		h := *b.High
		c.High = &h
	}
	c.Calls = b.Calls.clone()
	return c
}

// CompletedBids is the auction outcome
type CompletedBids struct {
	Winning     Bid   `json:"winning"`
	Calls       Calls `json:"calls"`
	Uncontested bool  `json:"uncontested"` // No other player placed a bid
}

func (b CompletedBids) clone() CompletedBids {
	c := b
	c.Calls = b.Calls.clone()
	return c
}

// Bidder returns the contract holder
func (b CompletedBids) Bidder() model.PlayerID {
	return b.Winning.Player
}

// ShowTrumpState is a trump show waiting for acknowledgements
type ShowTrumpState struct {
	Player         model.PlayerID   `json:"player"`
	Cards          []Card           `json:"cards"`
	Level          ShowLevel        `json:"level"`
	Unacknowledged []model.PlayerID `json:"unacknowledged"`
}

// TrumpShow is an acknowledged trump show
type TrumpShow struct {
	Player model.PlayerID `json:"player"`
	Cards  []Card         `json:"cards"`
	Level  ShowLevel      `json:"level"`
}

// ShowLedger holds the shows made this hand
type ShowLedger struct {
	Pending *ShowTrumpState `json:"pending,omitempty"`
	Shows   []TrumpShow     `json:"shows,omitempty"`
}

func (s ShowLedger) clone() ShowLedger {
	c := ShowLedger{}
	if s.Pending != nil {
		p := *s.Pending
		p.Cards = cloneCards(s.Pending.Cards)
		p.Unacknowledged = slices.Clone(s.Pending.Unacknowledged)
		c.Pending = &p
	}
	if s.Shows != nil {
		c.Shows = make([]TrumpShow, len(s.Shows))
		for i, sh := range s.Shows {
			sh.Cards = cloneCards(sh.Cards)
			c.Shows[i] = sh
		}
	}
	return c
}

// hasShown reports whether p has a show pending or made
func (s ShowLedger) hasShown(p model.PlayerID) bool {
	if s.Pending != nil && s.Pending.Player == p {
		return true
	}
	return slices.ContainsFunc(s.Shows, func(sh TrumpShow) bool { return sh.Player == p })
}

// PartnerInfo tracks the called card. Holder is secret until the card is played.
type PartnerInfo struct {
	Card     *Card          `json:"card,omitempty"`
	Holder   model.PlayerID `json:"holder,omitempty"`
	Revealed bool           `json:"revealed"`
}

// Partner returns the revealed partner, or "" while unknown or absent
func (p PartnerInfo) Partner() model.PlayerID {
	if !p.Revealed {
		return ""
	}
	return p.Holder
}

func (p PartnerInfo) clone() PartnerInfo {
	c := p
	if p.Card != nil {
		card := *p.Card
		c.Card = &card
	}
	return c
}

// NewGame collects entering players until everyone is ready
type NewGame struct {
	Table
	Ready []model.PlayerID `json:"ready"`
}

// NewGameState returns an empty NewGame on table
func NewGameState(table Table) *NewGame {
	return &NewGame{Table: table}
}

func (s *NewGame) Phase() Phase { return PhaseNewGame }

func (s *NewGame) clone() BoardState {
	return &NewGame{Table: s.copy(), Ready: slices.Clone(s.Ready)}
}

func (s *NewGame) cardGroups() [][]Card { return nil }

// IsReady reports whether p has marked themselves ready
func (s *NewGame) IsReady(p model.PlayerID) bool {
	return slices.Contains(s.Ready, p)
}

// Bidding is the auction
type Bidding struct {
	Table
	Hands Hands       `json:"hands"`
	Dog   []Card      `json:"dog"`
	Bids  CurrentBids `json:"bids"`
	Shows ShowLedger  `json:"shows"`
}

func (s *Bidding) Phase() Phase { return PhaseBidding }

func (s *Bidding) clone() BoardState {
	return &Bidding{
		Table: s.copy(),
		Hands: s.Hands.clone(),
		Dog:   cloneCards(s.Dog),
		Bids:  s.Bids.clone(),
		Shows: s.Shows.clone(),
	}
}

func (s *Bidding) cardGroups() [][]Card {
	return append(s.Hands.groups(), s.Dog)
}

// CurrentBidder returns the player whose turn it is to bid
func (s *Bidding) CurrentBidder() model.PlayerID {
	if len(s.Bids.Remaining) == 0 {
		return ""
	}
	return s.Bids.Remaining[s.Bids.Turn%len(s.Bids.Remaining)]
}

// PartnerCall waits for the bidder of a five player table to name the partner card
type PartnerCall struct {
	Table
	Hands    Hands         `json:"hands"`
	Dog      []Card        `json:"dog"`
	Contract CompletedBids `json:"contract"`
	Shows    ShowLedger    `json:"shows"`
}

func (s *PartnerCall) Phase() Phase { return PhasePartnerCall }

func (s *PartnerCall) clone() BoardState {
	return &PartnerCall{
		Table:    s.copy(),
		Hands:    s.Hands.clone(),
		Dog:      cloneCards(s.Dog),
		Contract: s.Contract.clone(),
		Shows:    s.Shows.clone(),
	}
}

func (s *PartnerCall) cardGroups() [][]Card {
	return append(s.Hands.groups(), s.Dog)
}

// DogReveal shows the dog to everyone before the bidder takes it
type DogReveal struct {
	Table
	Hands        Hands            `json:"hands"`
	Dog          []Card           `json:"dog"`
	Contract     CompletedBids    `json:"contract"`
	Shows        ShowLedger       `json:"shows"`
	Partner      PartnerInfo      `json:"partner"`
	Acknowledged []model.PlayerID `json:"acknowledged"`
}

func (s *DogReveal) Phase() Phase { return PhaseDogReveal }

func (s *DogReveal) clone() BoardState {
	return &DogReveal{
		Table:        s.copy(),
		Hands:        s.Hands.clone(),
		Dog:          cloneCards(s.Dog),
		Contract:     s.Contract.clone(),
		Shows:        s.Shows.clone(),
		Partner:      s.Partner.clone(),
		Acknowledged: slices.Clone(s.Acknowledged),
	}
}

func (s *DogReveal) cardGroups() [][]Card {
	return append(s.Hands.groups(), s.Dog)
}

// DogExchange is the bidder discarding back into the dog
type DogExchange struct {
	Table
	Hands        Hands            `json:"hands"`
	Discard      []Card           `json:"discard"`
	DogSize      int              `json:"dog_size"`
	Contract     CompletedBids    `json:"contract"`
	Shows        ShowLedger       `json:"shows"`
	Partner      PartnerInfo      `json:"partner"`
	Acknowledged []model.PlayerID `json:"acknowledged"`
}

func (s *DogExchange) Phase() Phase { return PhaseDogExchange }

func (s *DogExchange) clone() BoardState {
	return &DogExchange{
		Table:        s.copy(),
		Hands:        s.Hands.clone(),
		Discard:      cloneCards(s.Discard),
		DogSize:      s.DogSize,
		Contract:     s.Contract.clone(),
		Shows:        s.Shows.clone(),
		Partner:      s.Partner.clone(),
		Acknowledged: slices.Clone(s.Acknowledged),
	}
}

func (s *DogExchange) cardGroups() [][]Card {
	return append(s.Hands.groups(), s.Discard)
}

// RemainingDiscards returns how many cards the bidder still has to discard
func (s *DogExchange) RemainingDiscards() int {
	return s.DogSize - len(s.Discard)
}

// Trick is the trick being played
type Trick struct {
	Cards   []Card           `json:"cards"`
	Players []model.PlayerID `json:"players"`
	LedSuit Suit             `json:"led_suit,omitempty"`
}

func (t Trick) clone() Trick {
	return Trick{Cards: cloneCards(t.Cards), Players: slices.Clone(t.Players), LedSuit: t.LedSuit}
}

// CompletedTrick is a finished trick with its winner
type CompletedTrick struct {
	Trick
	Winner model.PlayerID `json:"winner"`
	Index  int            `json:"index"`
}

// JokerExchangeState is a Joker owner's debt of one card to the winner of the trick the Joker lost
type JokerExchangeState struct {
	Debtor        model.PlayerID `json:"debtor"`
	Creditor      model.PlayerID `json:"creditor"`
	Trick         int            `json:"trick"`
	CardExchanged *Card          `json:"card_exchanged,omitempty"`
}

// Settled reports whether the debt has been paid
func (j JokerExchangeState) Settled() bool {
	return j.CardExchanged != nil
}

// Playing is trick play
type Playing struct {
	Table
	Hands       Hands                `json:"hands"`
	Contract    CompletedBids        `json:"contract"`
	Shows       ShowLedger           `json:"shows"`
	Partner     PartnerInfo          `json:"partner"`
	Aside       []Card               `json:"aside"`
	AsideBidder bool                 `json:"aside_bidder"` // Aside counts for the bidder's side
	Trick       Trick                `json:"trick"`
	Leader      model.PlayerID       `json:"leader"`
	Tricks      []CompletedTrick     `json:"tricks"`
	Won         Hands                `json:"won"`
	Debts       []JokerExchangeState `json:"debts,omitempty"`
	TrickCount  int                  `json:"trick_count"`
}

func (s *Playing) Phase() Phase { return PhasePlaying }

func (s *Playing) clone() BoardState {
	c := &Playing{
		Table:       s.copy(),
		Hands:       s.Hands.clone(),
		Contract:    s.Contract.clone(),
		Shows:       s.Shows.clone(),
		Partner:     s.Partner.clone(),
		Aside:       cloneCards(s.Aside),
		AsideBidder: s.AsideBidder,
		Trick:       s.Trick.clone(),
		Leader:      s.Leader,
		Tricks:      make([]CompletedTrick, len(s.Tricks)),
		Won:         s.Won.clone(),
		TrickCount:  s.TrickCount,
	}
	for i, t := range s.Tricks {
		c.Tricks[i] = CompletedTrick{Trick: t.Trick.clone(), Winner: t.Winner, Index: t.Index}
	}
	if s.Debts != nil {
		c.Debts = make([]JokerExchangeState, len(s.Debts))
		for i, d := range s.Debts {
			if d.CardExchanged != nil {
				card := *d.CardExchanged
				d.CardExchanged = &card
			}
			c.Debts[i] = d
		}
	}
	return c
}

func (s *Playing) cardGroups() [][]Card {
	groups := append(s.Hands.groups(), s.Aside, s.Trick.Cards)
	return append(groups, s.Won.groups()...)
}

// CurrentPlayer returns the player due to play to the current trick
func (s *Playing) CurrentPlayer() model.PlayerID {
	if len(s.Tricks) >= s.TrickCount {
		return ""
	}
	seats := s.rotation(s.Leader)
	return seats[len(s.Trick.Cards)%len(seats)]
}

// Bidder returns the contract holder
func (s *Playing) Bidder() model.PlayerID {
	return s.Contract.Bidder()
}

// OnBidderSide reports whether p plays with the bidder, using the secret partner if unrevealed
func (s *Playing) OnBidderSide(p model.PlayerID) bool {
	return p == s.Bidder() || (s.Partner.Holder != "" && p == s.Partner.Holder)
}

// OutstandingDebts returns the unpaid Joker debts
func (s *Playing) OutstandingDebts() []JokerExchangeState {
	var out []JokerExchangeState
	for _, d := range s.Debts {
		if !d.Settled() {
			out = append(out, d)
		}
	}
	return out
}

// AllTricksPlayed reports whether every trick of the hand has been played
func (s *Playing) AllTricksPlayed() bool {
	return len(s.Tricks) >= s.TrickCount
}

// Completed is a scored hand. Only chat is accepted.
type Completed struct {
	Table
	Result CompletedGameState `json:"result"`
	Tricks []CompletedTrick   `json:"tricks"`
	Aside  []Card             `json:"aside"`
	Won    Hands              `json:"won"`
}

func (s *Completed) Phase() Phase { return PhaseCompleted }

func (s *Completed) clone() BoardState {
	c := &Completed{
		Table:  s.copy(),
		Result: s.Result.clone(),
		Tricks: make([]CompletedTrick, len(s.Tricks)),
		Aside:  cloneCards(s.Aside),
		Won:    s.Won.clone(),
	}
	for i, t := range s.Tricks {
		c.Tricks[i] = CompletedTrick{Trick: t.Trick.clone(), Winner: t.Winner, Index: t.Index}
	}
	return c
}

func (s *Completed) cardGroups() [][]Card {
	return append(s.Won.groups(), s.Aside)
}

// Clone returns a deep copy of state
func Clone(state BoardState) BoardState {
	return state.clone()
}

// TableOf returns a copy of the table shared by every variant
func TableOf(state BoardState) Table {
	return state.table().copy()
}
