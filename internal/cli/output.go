package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mcoot/tarot-go2/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Room:
		o.printRoom(v)
	case response.RoomList:
		o.printRoomList(v)
	case RoomState:
		o.printRoomState(v)
	case response.Deliveries:
		o.printDeliveries(v)
	case response.Hands:
		o.printHands(v)
	case response.BotAdded:
		fmt.Printf("Bot %s added (%s)\n", v.PlayerID, v.Strategy)
	case response.Strategies:
		for _, s := range v.Strategies {
			fmt.Printf("  %s - %s\n", s.Strategy, s.Name)
		}
	case SimulationResult:
		o.printSimulation(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// RoomState is a room as the caller sees it. The board state stays raw: its shape depends
// on the phase.
type RoomState struct {
	Room    response.Room `json:"room"`
	View    ViewSummary   `json:"view"`
	LastSeq int64         `json:"last_seq"`
}

// ViewSummary is the phase-independent part of a player view
type ViewSummary struct {
	Viewer    string          `json:"viewer"`
	Phase     string          `json:"phase"`
	State     json.RawMessage `json:"state"`
	HandSizes map[string]int  `json:"hand_sizes,omitempty"`
}

// HandSummary is one simulated or replayed hand
type HandSummary struct {
	HandNumber int            `json:"hand_number"`
	Bidder     string         `json:"bidder"`
	Partner    string         `json:"partner,omitempty"`
	Contract   string         `json:"contract"`
	BidderWon  bool           `json:"bidder_won"`
	Deltas     map[string]int `json:"deltas"`
}

// SimulationResult is the outcome of simulate or replay
type SimulationResult struct {
	Seed   uint64         `json:"seed"`
	Hands  []HandSummary  `json:"hands"`
	Totals map[string]int `json:"totals"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRoom(r response.Room) {
	fmt.Printf("Room: %s (%s)\n", r.Name, r.ID)
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Autolog: %t  Baker-Bengtson: %t  Public hands: %t\n",
		r.GameSettings.AutologEnabled, r.GameSettings.BakerBengtsonVariant, r.GameSettings.PublicHands)
	if len(r.Bots) > 0 {
		fmt.Printf("Bots (%d):\n", len(r.Bots))
		for _, b := range r.Bots {
			fmt.Printf("  - %s (%s)\n", b.PlayerID, b.Strategy)
		}
	}
}

func (o *Output) printRoomList(l response.RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Println("No rooms")
		return
	}
	for _, r := range l.Rooms {
		fmt.Printf("%s  %-8s %s\n", r.ID, r.Status, r.Name)
	}
}

func (o *Output) printRoomState(s RoomState) {
	fmt.Printf("Room: %s (%s)\n", s.Room.Name, s.Room.ID)
	fmt.Printf("Phase: %s\n", s.View.Phase)
	fmt.Printf("Last event: %d\n", s.LastSeq)
	if len(s.View.HandSizes) > 0 {
		fmt.Println("Hand sizes:")
		for _, p := range sortedKeys(s.View.HandSizes) {
			fmt.Printf("  %s: %d\n", p, s.View.HandSizes[p])
		}
	}
	if cfg.Verbose {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, s.View.State, "", "  "); err == nil {
			fmt.Println(pretty.String())
		}
	}
}

func (o *Output) printDeliveries(d response.Deliveries) {
	for _, e := range d.Deliveries {
		private := ""
		if e.PrivateTo != "" {
			private = " [to " + e.PrivateTo + "]"
		}
		fmt.Printf("#%d %s%s %s\n", e.Seq, e.Type, private, truncate(string(e.Event), 100))
	}
}

func (o *Output) printHands(h response.Hands) {
	if len(h.Hands) == 0 {
		fmt.Println("No completed hands")
		return
	}
	for _, hand := range h.Hands {
		result := "lost"
		if hand.BidderWon {
			result = "won"
		}
		fmt.Printf("Hand %d: %s bid %d and %s\n", hand.HandNumber, hand.Bidder, hand.Contract, result)
	}
	fmt.Println("Totals:")
	for _, p := range sortedKeys(h.Totals) {
		fmt.Printf("  %s: %d\n", p, h.Totals[p])
	}
}

func (o *Output) printSimulation(s SimulationResult) {
	fmt.Printf("Seed: %d\n", s.Seed)
	for _, hand := range s.Hands {
		result := "lost"
		if hand.BidderWon {
			result = "won"
		}
		partner := ""
		if hand.Partner != "" {
			partner = " with " + hand.Partner
		}
		fmt.Printf("Hand %d: %s%s bid %s and %s\n", hand.HandNumber, hand.Bidder, partner, hand.Contract, result)
	}
	fmt.Println("Totals:")
	for _, p := range sortedKeys(s.Totals) {
		fmt.Printf("  %s: %d\n", p, s.Totals[p])
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// truncate shortens s for single-line display
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
