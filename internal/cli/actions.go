package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/tarot-go2/internal/api/response"
	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

var errPlayerRequired = errors.New("a player is required: pass --player or set TAROT_PLAYER")

func newActCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "act <room-id> <action> [args...]",
		Short: "Submit an action as the current player",
		Long: `Submit an action to a room as the player given by --player.

Actions:
  enter                      Take a seat
  ready                      Ready up for the deal
  bid <contract|pass>        petite, garde, garde-sans, garde-contre, chelem-garde
  call-partner <card>        e.g. heart-roi
  call <call>                declared_slam, russian
  take-dog                   Bidder takes the dog
  ack-dog                    Acknowledge the dog, or finish discarding
  discard <card>...          Bidder discards into the dog
  show <card>...             Show trumps
  ack-show                   Acknowledge another player's show
  play <card>                Play a card
  joker-exchange <card>      Pay a card owed for the Joker
  message <text>...          Chat
  raw <json>                 Any action envelope`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Player == "" {
				return errPlayerRequired
			}

			action, err := ParseAction(model.PlayerID(cfg.Player), args[1], args[2:])
			if err != nil {
				return err
			}

			var result response.Deliveries
			if err := client.Post(roomPath(args[0], "actions"), action, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

// ParseAction builds an action for player from a command name and its arguments
func ParseAction(player model.PlayerID, name string, args []string) (tarot.Action, error) {
	needs := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("%s needs %d argument(s)", name, n)
		}
		return nil
	}

	switch name {
	case "enter":
		return tarot.EnterGame(player), nil
	case "ready":
		return tarot.PlayerReady(player), nil
	case "bid":
		if err := needs(1); err != nil {
			return tarot.Action{}, err
		}
		if args[0] == "pass" {
			return tarot.PassBid(player), nil
		}
		value, err := parseBid(args[0])
		if err != nil {
			return tarot.Action{}, err
		}
		return tarot.PlaceBid(player, value), nil
	case "call-partner":
		if err := needs(1); err != nil {
			return tarot.Action{}, err
		}
		card, err := tarot.ParseCard(args[0])
		if err != nil {
			return tarot.Action{}, err
		}
		return tarot.CallPartner(player, card), nil
	case "call":
		if err := needs(1); err != nil {
			return tarot.Action{}, err
		}
		return tarot.MakeCall(player, tarot.Call(args[0])), nil
	case "take-dog":
		return tarot.TakeDog(player), nil
	case "ack-dog":
		return tarot.AckDog(player), nil
	case "discard":
		if err := needs(1); err != nil {
			return tarot.Action{}, err
		}
		cards, err := parseCards(args)
		if err != nil {
			return tarot.Action{}, err
		}
		return tarot.AddToDog(player, cards...), nil
	case "show":
		if err := needs(1); err != nil {
			return tarot.Action{}, err
		}
		cards, err := parseCards(args)
		if err != nil {
			return tarot.Action{}, err
		}
		return tarot.ShowTrump(player, cards), nil
	case "ack-show":
		return tarot.AckTrumpShow(player), nil
	case "play":
		if err := needs(1); err != nil {
			return tarot.Action{}, err
		}
		card, err := tarot.ParseCard(args[0])
		if err != nil {
			return tarot.Action{}, err
		}
		return tarot.PlayCard(player, card), nil
	case "joker-exchange":
		if err := needs(1); err != nil {
			return tarot.Action{}, err
		}
		card, err := tarot.ParseCard(args[0])
		if err != nil {
			return tarot.Action{}, err
		}
		return tarot.JokerExchange(player, card), nil
	case "message":
		if err := needs(1); err != nil {
			return tarot.Action{}, err
		}
		return tarot.Message(player, strings.Join(args, " ")), nil
	case "raw":
		if err := needs(1); err != nil {
			return tarot.Action{}, err
		}
		var a tarot.Action
		if err := json.Unmarshal([]byte(args[0]), &a); err != nil {
			return tarot.Action{}, fmt.Errorf("invalid action JSON: %w", err)
		}
		if a.Player == "" {
			a.Player = player
		}
		return a, nil
	}
	return tarot.Action{}, fmt.Errorf("unknown action %q", name)
}

var bidNames = map[string]tarot.BidValue{
	"petite":       tarot.BidPetite,
	"garde":        tarot.BidGarde,
	"garde-sans":   tarot.BidGardeSans,
	"garde-contre": tarot.BidGardeContre,
	"chelem-garde": tarot.BidChelemGarde,
}

func parseBid(s string) (tarot.BidValue, error) {
	if v, ok := bidNames[strings.ToLower(s)]; ok {
		return v, nil
	}
	if n, err := strconv.Atoi(s); err == nil && tarot.BidValue(n).IsValid() {
		return tarot.BidValue(n), nil
	}
	return 0, fmt.Errorf("unknown contract %q", s)
}

func parseCards(args []string) ([]tarot.Card, error) {
	cards := make([]tarot.Card, 0, len(args))
	for _, a := range args {
		c, err := tarot.ParseCard(a)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}
