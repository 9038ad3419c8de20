package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "tarot",
		Short: "CLI tool for the tarot room API",
		Long: `tarot is a CLI tool for interacting with the tarot room JSON API.

It supports room management, player actions, bots and real-time event streaming
against a running server, and offline simulate and replay of bot-played hands.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			client = NewClient(cfg.ServerURL, cfg.Player)
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: TAROT_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Player, "player", "p", cfg.Player, "Player ID to act as (env: TAROT_PLAYER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newRoomsCmd())
	rootCmd.AddCommand(newActCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
