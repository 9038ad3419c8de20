package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/tarot-go2/internal/api/request"
	"github.com/mcoot/tarot-go2/internal/api/response"
	"github.com/mcoot/tarot-go2/internal/model"
)

func newRoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Room commands",
	}

	cmd.AddCommand(newRoomsCreateCmd())
	cmd.AddCommand(newRoomsListCmd())
	cmd.AddCommand(newRoomsGetCmd())
	cmd.AddCommand(newRoomsStateCmd())
	cmd.AddCommand(newRoomsHistoryCmd())
	cmd.AddCommand(newRoomsHandsCmd())
	cmd.AddCommand(newRoomsNextHandCmd())
	cmd.AddCommand(newRoomsAddBotCmd())
	cmd.AddCommand(newRoomsStrategiesCmd())
	cmd.AddCommand(newRoomsCloseCmd())

	return cmd
}

func roomPath(id string, parts ...string) string {
	p := "/api/v1/rooms/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func newRoomsCreateCmd() *cobra.Command {
	var settings model.GameSettings

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.CreateRoomRequest{Name: args[0], GameSettings: settings}
			var result response.Room

			if err := client.Post("/api/v1/rooms", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&settings.AutologEnabled, "autolog", false, "Archive each completed hand")
	cmd.Flags().BoolVar(&settings.BakerBengtsonVariant, "baker-bengtson", false, "Use the Baker-Bengtson scoring variant")
	cmd.Flags().BoolVar(&settings.PublicHands, "public-hands", false, "Let observers see every hand")

	return cmd
}

func newRoomsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rooms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.RoomList

			if err := client.Get("/api/v1/rooms", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <room-id>",
		Short: "Get a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room

			if err := client.Get(roomPath(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomsStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state <room-id>",
		Short: "Show the table as the current player sees it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomState

			if err := client.Get(roomPath(args[0], "state"), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomsHistoryCmd() *cobra.Command {
	var since int64

	cmd := &cobra.Command{
		Use:   "history <room-id>",
		Short: "List the room's events after a sequence number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Deliveries

			path := roomPath(args[0], "history") + "?since=" + strconv.FormatInt(since, 10)
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&since, "since", 0, "Only events after this sequence number")

	return cmd
}

func newRoomsHandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hands <room-id>",
		Short: "List the room's archived hands and running totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Hands

			if err := client.Get(roomPath(args[0], "hands"), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomsNextHandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-hand <room-id>",
		Short: "Start the next hand once the current one is complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Deliveries

			if err := client.Post(roomPath(args[0], "next-hand"), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomsAddBotCmd() *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "add-bot <room-id>",
		Short: "Seat a bot in the room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.AddBotRequest{Strategy: strategy}
			var result response.BotAdded

			if err := client.Post(roomPath(args[0], "bots"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", model.BotStrategyRandom, "Bot strategy: random, greedy")

	return cmd
}

func newRoomsStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the available bot strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Strategies

			if err := client.Get("/api/v1/bots/strategies", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomsCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <room-id>",
		Short: "Close a room between hands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(roomPath(args[0])); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Room %s closed", args[0]))
			return nil
		},
	}
}
