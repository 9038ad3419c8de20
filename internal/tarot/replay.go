package tarot

import "fmt"

// LogEntry is one step of a room's history: an applied action, or the start of the next hand
type LogEntry struct {
	Action   *Action `json:"action,omitempty"`
	NextHand bool    `json:"next_hand,omitempty"`
}

// ActionEntry returns the log entry recording a
func ActionEntry(a Action) LogEntry {
	return LogEntry{Action: &a}
}

// NextHandEntry returns the log entry recording the start of a new hand
func NextHandEntry() LogEntry {
	return LogEntry{NextHand: true}
}

// Replay rebuilds the state reached by applying log to a fresh table. Every entry was accepted
// when it was recorded, so any rejection means the log does not belong to table.
func Replay(table Table, log []LogEntry) (BoardState, error) {
	var state BoardState = NewGameState(table)
	for i, entry := range log {
		var err error
		switch {
		case entry.NextHand:
			state, _, err = NextHand(state)
		case entry.Action != nil:
			state, _, err = Apply(state, *entry.Action)
		default:
			err = fmt.Errorf("empty entry")
		}
		if err != nil {
			return nil, fmt.Errorf("replaying entry %d: %w", i, err)
		}
	}
	return state, nil
}
