package room

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mcoot/tarot-go2/internal/dependencies/clock"
	"github.com/mcoot/tarot-go2/internal/dependencies/random"
	"github.com/mcoot/tarot-go2/internal/metrics"
	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/storage"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

// MaxNameLength bounds room names
const MaxNameLength = 64

// Config holds room runtime settings
type Config struct {
	// QueueSize is the number of pending requests a room buffers
	QueueSize int

	// Rules selects the rule set for a room's settings
	Rules func(model.GameSettings) tarot.RuleSet
}

// DefaultConfig returns the default room runtime settings
func DefaultConfig() Config {
	return Config{
		QueueSize: 64,
		Rules:     tarot.RulesFor,
	}
}

// Manager creates rooms and owns their actors. Rooms missing from memory are rebuilt from
// storage by replaying their action log.
type Manager struct {
	storage storage.Storage
	sink    Sink
	clock   clock.Clock
	random  random.Random
	metrics *metrics.Metrics
	logger  *slog.Logger
	cfg     Config

	mu    sync.Mutex
	rooms map[model.RoomID]*Room
}

// NewManager creates a new Manager. sink may be nil.
func NewManager(
	store storage.Storage,
	sink Sink,
	clk clock.Clock,
	rnd random.Random,
	m *metrics.Metrics,
	logger *slog.Logger,
	cfg Config,
) *Manager {
	if sink == nil {
		sink = discard{}
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if cfg.Rules == nil {
		cfg.Rules = tarot.RulesFor
	}
	return &Manager{
		storage: store,
		sink:    sink,
		clock:   clk,
		random:  rnd,
		metrics: m,
		logger:  logger.With(slog.String("component", "room-manager")),
		cfg:     cfg,
		rooms:   make(map[model.RoomID]*Room),
	}
}

func (m *Manager) deps() deps {
	return deps{
		storage: m.storage,
		sink:    m.sink,
		clock:   m.clock,
		metrics: m.metrics,
		logger:  m.logger,
	}
}

func (m *Manager) table(room *model.Room) tarot.Table {
	return tarot.NewTable(room.Settings, m.cfg.Rules(room.Settings), room.Seed)
}

// CreateRoom creates a room and starts its actor
func (m *Manager) CreateRoom(ctx context.Context, name string, settings model.GameSettings) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > MaxNameLength {
		return nil, fmt.Errorf("name must be 1 to %d characters: %w", MaxNameLength, model.ErrInvalidRoom)
	}
	if err := m.cfg.Rules(settings).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidRoom, err)
	}

	now := m.clock.Now()
	room := &model.Room{
		ID:        model.RoomID(uuid.NewString()),
		Name:      name,
		Settings:  settings,
		Seed:      m.random.Uint64(),
		Status:    model.RoomStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.storage.SaveRoom(ctx, room); err != nil {
		m.logger.Error("failed to save room",
			slog.String("room_id", string(room.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	stored := *room
	r := start(&stored, tarot.NewGameState(m.table(room)), 0, m.cfg.QueueSize, m.deps())

	m.mu.Lock()
	m.rooms[room.ID] = r
	m.metrics.SetActiveRooms(len(m.rooms))
	m.mu.Unlock()

	m.logger.Info("room created",
		slog.String("room_id", string(room.ID)),
		slog.String("name", name),
		slog.Bool("baker_bengtson", settings.BakerBengtsonVariant),
		slog.Bool("public_hands", settings.PublicHands),
	)
	return r, nil
}

// GetRoom returns the running room, recovering it from storage if needed
func (m *Manager) GetRoom(ctx context.Context, id model.RoomID) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.rooms[id]; ok {
		return r, nil
	}

	r, err := m.recover(ctx, id)
	if err != nil {
		return nil, err
	}
	m.rooms[id] = r
	m.metrics.SetActiveRooms(len(m.rooms))
	return r, nil
}

// recover rebuilds a room from its record, action log and event log
func (m *Manager) recover(ctx context.Context, id model.RoomID) (*Room, error) {
	room, err := m.storage.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if room.Status == model.RoomStatusClosed {
		return nil, model.ErrRoomClosed
	}

	log, err := m.storage.GetLog(ctx, id)
	if err != nil {
		return nil, err
	}
	state, err := tarot.Replay(m.table(room), log)
	if err != nil {
		return nil, fmt.Errorf("recovering room %s: %w", id, err)
	}

	deliveries, err := m.storage.GetDeliveries(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	var seq int64
	if len(deliveries) > 0 {
		seq = deliveries[len(deliveries)-1].Seq
	}

	m.logger.Info("room recovered",
		slog.String("room_id", string(id)),
		slog.Int("log_entries", len(log)),
		slog.String("phase", string(state.Phase())),
	)
	return start(room, state, seq, m.cfg.QueueSize, m.deps()), nil
}

// ListRooms returns every stored room
func (m *Manager) ListRooms(ctx context.Context) ([]*model.Room, error) {
	return m.storage.ListRooms(ctx)
}

// CloseRoom closes a room between hands and stops its actor
func (m *Manager) CloseRoom(ctx context.Context, id model.RoomID) error {
	r, err := m.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if err := r.close(ctx); err != nil {
		return err
	}
	<-r.done

	m.mu.Lock()
	delete(m.rooms, id)
	m.metrics.SetActiveRooms(len(m.rooms))
	m.mu.Unlock()
	return nil
}

// Shutdown stops every running actor. Stored rooms are left as they are and recover on
// the next GetRoom.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.rooms {
		r.stop()
		delete(m.rooms, id)
	}
	m.metrics.SetActiveRooms(0)
}
