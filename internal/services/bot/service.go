package bot

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mcoot/tarot-go2/internal/dependencies/random"
	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/services/room"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

const (
	// PlayerIDAlphabet is the character set for generating bot player IDs
	PlayerIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	// PlayerIDLength is the length of generated bot player IDs
	PlayerIDLength = 12
	// MaxBotIterations is a safety limit for the ProcessBotActions loop
	MaxBotIterations = 1000
)

// Service seats bots in rooms and plays their turns
type Service struct {
	rooms      *room.Manager
	strategies map[string]Strategy
	random     random.Random
	logger     *slog.Logger
}

// NewService creates a new bot Service
func NewService(rooms *room.Manager, strategies map[string]Strategy, rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		rooms:      rooms,
		strategies: strategies,
		random:     rnd,
		logger:     logger.With(slog.String("component", "bot-service")),
	}
}

// DefaultStrategies returns every built-in strategy by name
func DefaultStrategies(rnd random.Random) map[string]Strategy {
	return map[string]Strategy{
		model.BotStrategyRandom: NewRandomStrategy(rnd),
		model.BotStrategyGreedy: NewGreedyStrategy(),
	}
}

func (s *Service) newBotID() model.PlayerID {
	var b strings.Builder
	b.WriteString("bot-")
	for range PlayerIDLength {
		b.WriteByte(PlayerIDAlphabet[s.random.Intn(len(PlayerIDAlphabet))])
	}
	return model.PlayerID(b.String())
}

// AddBot seats a new bot in the room. The bot readies itself on the next ProcessBotActions.
func (s *Service) AddBot(ctx context.Context, roomID model.RoomID, strategy string) (model.PlayerID, error) {
	if _, ok := s.strategies[strategy]; !ok {
		return "", fmt.Errorf("%w: %s", model.ErrUnknownBotStrategy, strategy)
	}

	r, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return "", err
	}

	id := s.newBotID()
	if _, err := r.AddBot(ctx, id, strategy); err != nil {
		return "", err
	}

	s.logger.Info("bot added to room",
		slog.String("room_id", string(roomID)),
		slog.String("bot_id", string(id)),
		slog.String("strategy", strategy),
	)
	return id, nil
}

// ProcessBotActions lets bots act until every remaining move belongs to a human.
// It returns every delivery the bots' actions produced.
func (s *Service) ProcessBotActions(ctx context.Context, roomID model.RoomID) ([]model.Delivery, error) {
	r, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	var deliveries []model.Delivery
	for range MaxBotIterations {
		acted, produced, err := s.step(ctx, r)
		deliveries = append(deliveries, produced...)
		if err != nil || !acted {
			return deliveries, err
		}
	}

	s.logger.Warn("bot iteration limit reached", slog.String("room_id", string(roomID)))
	return deliveries, nil
}

// step lets the first bot with something to do act once
func (s *Service) step(ctx context.Context, r *room.Room) (bool, []model.Delivery, error) {
	snap, err := r.Snapshot(ctx, "")
	if err != nil {
		return false, nil, err
	}
	if !snap.Room.IsOpen() {
		return false, nil, nil
	}

	bots := make([]model.PlayerID, 0, len(snap.Room.Bots))
	for id := range snap.Room.Bots {
		bots = append(bots, id)
	}
	slices.Sort(bots)

	for _, id := range bots {
		strategy := s.strategyFor(snap.Room.Bots[id])
		view, err := r.Snapshot(ctx, id)
		if err != nil {
			return false, nil, err
		}
		action, ok := NextAction(strategy, view.View.State, id)
		if !ok {
			continue
		}

		deliveries, err := r.Submit(ctx, action)
		if err != nil {
			if tarot.ErrorCode(err) != "" && !tarot.IsInvariant(err) {
				// Stop rather than retry a rejected move
				s.logger.Warn("bot action rejected",
					slog.String("room_id", string(r.ID())),
					slog.String("bot_id", string(id)),
					slog.String("action", string(action.Type)),
					slog.String("error", err.Error()),
				)
				return false, deliveries, nil
			}
			return false, deliveries, err
		}
		return true, deliveries, nil
	}
	return false, nil, nil
}

// strategyFor returns the named strategy, falling back to random
func (s *Service) strategyFor(name string) Strategy {
	if st, ok := s.strategies[name]; ok {
		return st
	}
	return s.strategies[model.BotStrategyRandom]
}
