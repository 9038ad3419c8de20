package tarot

import (
	"fmt"
	"slices"

	"github.com/mcoot/tarot-go2/internal/model"
)

// showTrump opens a trump show for a.Player. Every other seated player must acknowledge it
// before another show can be made or a card played.
func showTrump(t *Table, hands Hands, ledger *ShowLedger, calls Calls, a Action) ([]Transition, error) {
	if err := requireSeated(t, a.Player); err != nil {
		return nil, err
	}
	if ledger.Pending != nil {
		return nil, fmt.Errorf("show by %q not yet acknowledged: %w", ledger.Pending.Player, ErrAwaitingAcknowledgement)
	}
	if ledger.hasShown(a.Player) {
		return nil, fmt.Errorf("player %q already showed: %w", a.Player, ErrIllegalShow)
	}

	hand := hands[a.Player]
	seen := make(map[Card]bool, len(a.Cards))
	withJoker := false
	for _, c := range a.Cards {
		if c.Suit != SuitTrump {
			return nil, fmt.Errorf("%v is not a trump: %w", c, ErrIllegalShow)
		}
		if seen[c] {
			return nil, fmt.Errorf("%v shown twice: %w", c, ErrIllegalShow)
		}
		seen[c] = true
		if !containsCard(hand, c) {
			return nil, fmt.Errorf("%v: %w", c, ErrCardNotInHand)
		}
		if c.IsJoker() {
			withJoker = true
		}
	}
	if withJoker {
		// The Joker may only complete a show that contains every trump held
		for _, c := range hand {
			if c.IsTrump() && !seen[c] {
				return nil, fmt.Errorf("joker shown while holding %v: %w", c, ErrIllegalShow)
			}
		}
	}

	level := t.Rules.ShowLevelFor(len(t.Seats), len(a.Cards))
	if level == "" {
		return nil, fmt.Errorf("%d trumps is not enough to show: %w", len(a.Cards), ErrIllegalShow)
	}

	shown := cloneCards(a.Cards)
	SortCards(shown)
	var pending []model.PlayerID
	for _, p := range t.Seats {
		if p != a.Player {
			pending = append(pending, p)
		}
	}
	ledger.Pending = &ShowTrumpState{
		Player:         a.Player,
		Cards:          shown,
		Level:          level,
		Unacknowledged: pending,
	}
	calls[a.Player] = append(calls[a.Player], CallShowed)

	return []Transition{public(TransitionTrumpShown, a.Player, TrumpShownPayload{
		Cards: cloneCards(shown),
		Level: level,
	})}, nil
}

// ackTrumpShow records p's acknowledgement of the pending show
func ackTrumpShow(t *Table, ledger *ShowLedger, p model.PlayerID) ([]Transition, error) {
	if err := requireSeated(t, p); err != nil {
		return nil, err
	}
	pending := ledger.Pending
	if pending == nil {
		return nil, fmt.Errorf("no trump show to acknowledge: %w", ErrIllegalShow)
	}
	i := slices.Index(pending.Unacknowledged, p)
	if i < 0 {
		return nil, fmt.Errorf("player %q has nothing to acknowledge: %w", p, ErrActionAlreadyHappened)
	}
	pending.Unacknowledged = slices.Delete(pending.Unacknowledged, i, i+1)

	complete := len(pending.Unacknowledged) == 0
	if complete {
		ledger.Shows = append(ledger.Shows, TrumpShow{
			Player: pending.Player,
			Cards:  pending.Cards,
			Level:  pending.Level,
		})
		ledger.Pending = nil
	}
	return []Transition{public(TransitionTrumpShowAcknowledged, p, TrumpShowAcknowledgedPayload{
		ShownBy:  pending.Player,
		Complete: complete,
	})}, nil
}
