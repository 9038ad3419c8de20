package bot

import (
	"errors"
	"fmt"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

// MaxSimulationSteps bounds the actions a simulation applies per hand
const MaxSimulationSteps = 10000

// ErrSimulationStalled is returned when no seated bot can act and the hand is unfinished
var ErrSimulationStalled = errors.New("simulation stalled")

// Simulation is a run of hands played by bots alone. The log replays it from a fresh table
// built with the same settings and seed.
type Simulation struct {
	Seed     uint64             `json:"seed"`
	Settings model.GameSettings `json:"settings"`
	Log      []tarot.LogEntry   `json:"log"`

	// Hands holds the completed state of each hand, in order
	Hands []*tarot.Completed `json:"-"`
}

// Simulate seats players in order and lets their strategies play the given number of hands.
// Each bot decides from its own view of the table.
func Simulate(table tarot.Table, players []model.PlayerID, strategies map[model.PlayerID]Strategy, hands int) (*Simulation, error) {
	sim := &Simulation{Seed: table.Seed, Settings: table.Settings}

	var state tarot.BoardState = tarot.NewGameState(table)
	apply := func(a tarot.Action) error {
		next, _, err := tarot.Apply(state, a)
		if err != nil {
			return fmt.Errorf("%s by %s: %w", a.Type, a.Player, err)
		}
		state = next
		sim.Log = append(sim.Log, tarot.ActionEntry(a))
		return nil
	}

	for _, p := range players {
		if _, ok := strategies[p]; !ok {
			return nil, fmt.Errorf("no strategy for %s: %w", p, model.ErrUnknownBotStrategy)
		}
		if err := apply(tarot.EnterGame(p)); err != nil {
			return nil, err
		}
	}

	for len(sim.Hands) < hands {
		done, err := playHand(&state, players, strategies, apply)
		if err != nil {
			return sim, err
		}
		sim.Hands = append(sim.Hands, done)
		if len(sim.Hands) == hands {
			break
		}

		next, _, err := tarot.NextHand(state)
		if err != nil {
			return sim, err
		}
		state = next
		sim.Log = append(sim.Log, tarot.NextHandEntry())
	}
	return sim, nil
}

func playHand(
	state *tarot.BoardState,
	players []model.PlayerID,
	strategies map[model.PlayerID]Strategy,
	apply func(tarot.Action) error,
) (*tarot.Completed, error) {
	for range MaxSimulationSteps {
		if done, ok := (*state).(*tarot.Completed); ok {
			return done, nil
		}

		acted := false
		for _, p := range players {
			view := tarot.View(*state, p)
			action, ok := NextAction(strategies[p], view.State, p)
			if !ok {
				continue
			}
			if err := apply(action); err != nil {
				return nil, err
			}
			acted = true
			break
		}
		if !acted {
			return nil, fmt.Errorf("%w during %s", ErrSimulationStalled, (*state).Phase())
		}
	}
	return nil, fmt.Errorf("%w: step limit reached", ErrSimulationStalled)
}
