package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/tarot-go2/internal/services/bot"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

func newReplayCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "replay <log-file>",
		Short: "Replay a saved action log",
		Long: `Rebuild every hand of an action log written by simulate --log and print the
results. Replaying is deterministic, so the results match the original run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := replayFile(args[0], configPath)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML file with rule presets")

	return cmd
}

func replayFile(path, configPath string) (SimulationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SimulationResult{}, err
	}
	var sim bot.Simulation
	if err := json.Unmarshal(data, &sim); err != nil {
		return SimulationResult{}, fmt.Errorf("invalid log file: %w", err)
	}

	rules, err := loadRules(configPath, sim.Settings)
	if err != nil {
		return SimulationResult{}, err
	}
	hands, err := replayHands(tarot.NewTable(sim.Settings, rules, sim.Seed), sim.Log)
	if err != nil {
		return SimulationResult{}, err
	}
	return summarize(sim.Seed, hands), nil
}

// replayHands returns the completed state of every hand in log. Each hand ends where the next
// begins, and the last one at the end of the log.
func replayHands(table tarot.Table, log []tarot.LogEntry) ([]*tarot.Completed, error) {
	var ends []int
	for i, entry := range log {
		if entry.NextHand {
			ends = append(ends, i)
		}
	}
	ends = append(ends, len(log))

	var hands []*tarot.Completed
	for _, end := range ends {
		state, err := tarot.Replay(table, log[:end])
		if err != nil {
			return nil, err
		}
		done, ok := state.(*tarot.Completed)
		if !ok {
			if end == len(log) {
				// The log stops mid-hand
				break
			}
			return nil, fmt.Errorf("hand before entry %d ended during %s", end, state.Phase())
		}
		hands = append(hands, done)
	}
	return hands, nil
}
