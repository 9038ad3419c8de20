package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/tarot-go2/internal/config"
	"github.com/mcoot/tarot-go2/internal/dependencies/random"
	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/services/bot"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

// simulateOptions holds the simulate command's flags
type simulateOptions struct {
	players    int
	hands      int
	seed       uint64
	strategy   string
	configPath string
	logPath    string
	settings   model.GameSettings
}

func newSimulateCmd() *cobra.Command {
	opts := simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play hands between bots locally",
		Long: `Play hands between bots without a server and print the results.

The same seed and strategies always produce the same hands. Use --log to save the
action log for the replay command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, sim, err := runSimulation(opts)
			if err != nil {
				return err
			}
			if opts.logPath != "" {
				if err := writeSimulation(opts.logPath, sim); err != nil {
					return err
				}
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.players, "players", 4, "Number of players (3 to 5)")
	cmd.Flags().IntVar(&opts.hands, "hands", 1, "Number of hands to play")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Deal seed (0 picks one at random)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "mixed", "Bot strategy: random, greedy, mixed")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML file with rule presets")
	cmd.Flags().StringVar(&opts.logPath, "log", "", "Write the action log to this file")
	cmd.Flags().BoolVar(&opts.settings.BakerBengtsonVariant, "baker-bengtson", false, "Use the Baker-Bengtson scoring variant")

	return cmd
}

func runSimulation(opts simulateOptions) (SimulationResult, *bot.Simulation, error) {
	if opts.players < tarot.MinPlayers || opts.players > tarot.MaxPlayers {
		return SimulationResult{}, nil, fmt.Errorf("players must be between %d and %d", tarot.MinPlayers, tarot.MaxPlayers)
	}
	if opts.hands < 1 {
		return SimulationResult{}, nil, fmt.Errorf("hands must be at least 1")
	}

	rules, err := loadRules(opts.configPath, opts.settings)
	if err != nil {
		return SimulationResult{}, nil, err
	}

	seed := opts.seed
	if seed == 0 {
		seed = random.New().Uint64()
	}

	players := make([]model.PlayerID, opts.players)
	strategies := make(map[model.PlayerID]bot.Strategy, opts.players)
	rnd := random.NewSeeded(seed)
	for i := range players {
		players[i] = model.PlayerID(fmt.Sprintf("p%d", i+1))
		name := opts.strategy
		if name == "mixed" {
			name = model.ValidBotStrategies()[i%len(model.ValidBotStrategies())]
		}
		strategy, ok := bot.DefaultStrategies(rnd)[name]
		if !ok {
			return SimulationResult{}, nil, fmt.Errorf("%w: %s", model.ErrUnknownBotStrategy, name)
		}
		strategies[players[i]] = strategy
	}

	sim, err := bot.Simulate(tarot.NewTable(opts.settings, rules, seed), players, strategies, opts.hands)
	if err != nil {
		return SimulationResult{}, nil, err
	}
	return summarize(seed, sim.Hands), sim, nil
}

// loadRules returns the rules for settings, from the presets in path when one is given
func loadRules(path string, settings model.GameSettings) (tarot.RuleSet, error) {
	if path == "" {
		return tarot.RulesFor(settings), nil
	}
	c, err := config.Load(path)
	if err != nil {
		return tarot.RuleSet{}, err
	}
	return c.RulesFor(settings), nil
}

func writeSimulation(path string, sim *bot.Simulation) error {
	data, err := json.MarshalIndent(sim, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func summarize(seed uint64, hands []*tarot.Completed) SimulationResult {
	result := SimulationResult{Seed: seed, Totals: map[string]int{}}
	for _, done := range hands {
		deltas := make(map[string]int, len(done.Result.Deltas))
		for p, d := range done.Result.Deltas {
			deltas[string(p)] = int(d)
			result.Totals[string(p)] += int(d)
		}
		result.Hands = append(result.Hands, HandSummary{
			HandNumber: done.HandNumber,
			Bidder:     string(done.Result.Bidder),
			Partner:    string(done.Result.Partner),
			Contract:   done.Result.Contract.Name(),
			BidderWon:  done.Result.BidderWon,
			Deltas:     deltas,
		})
	}
	return result
}
