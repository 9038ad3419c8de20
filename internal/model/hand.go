package model

import (
	"encoding/json"
	"time"
)

// HandRecord is the archived score ledger entry of a completed hand.
// Score values are half-points.
type HandRecord struct {
	RoomID      RoomID
	HandNumber  int
	Bidder      PlayerID
	Partner     PlayerID // Empty without a called partner
	Contract    int
	BidderWon   bool
	Deltas      map[PlayerID]int
	Result      json.RawMessage // Full encoded result
	CompletedAt time.Time
}

// Totals sums the deltas of every record per player
func Totals(records []*HandRecord) map[PlayerID]int {
	totals := make(map[PlayerID]int)
	for _, r := range records {
		for p, d := range r.Deltas {
			totals[p] += d
		}
	}
	return totals
}
