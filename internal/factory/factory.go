package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	natsgo "github.com/nats-io/nats.go"

	"github.com/mcoot/tarot-go2/internal/config"
	"github.com/mcoot/tarot-go2/internal/dependencies/clock"
	"github.com/mcoot/tarot-go2/internal/dependencies/random"
	"github.com/mcoot/tarot-go2/internal/metrics"
	"github.com/mcoot/tarot-go2/internal/model"
	tarotnats "github.com/mcoot/tarot-go2/internal/nats"
	"github.com/mcoot/tarot-go2/internal/services/bot"
	"github.com/mcoot/tarot-go2/internal/services/room"
	"github.com/mcoot/tarot-go2/internal/storage"
	"github.com/mcoot/tarot-go2/internal/storage/memory"
	redisstorage "github.com/mcoot/tarot-go2/internal/storage/redis"
	"github.com/mcoot/tarot-go2/internal/tarot"
	"github.com/mcoot/tarot-go2/internal/web/sse"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Metrics    *metrics.Metrics
	Rooms      *room.Manager
	BotService *bot.Service
	HubManager *sse.HubManager

	// NATS transport, nil when disabled
	NatsSink       *tarotnats.Sink
	ActionListener *tarotnats.ActionListener

	natsConn *natsgo.Conn
	logger   *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Settings is the server configuration (optional)
	// If zero value, defaults to config.Default()
	Settings config.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// RedisConfig overrides the Redis settings derived from Settings (optional)
	RedisConfig *redisstorage.Config
	// NatsConn is an established NATS connection to use instead of dialling Settings.Server.NatsURL
	NatsConn tarotnats.Conn
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	settings := cfg.Settings
	if settings.Rules == nil {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	// Create storage based on type
	var store storage.Storage
	switch settings.Server.StorageType {
	case "", config.StorageTypeMemory:
		store = memory.New()
	case config.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = settings.Server.RedisURL
		redisCfg.RoomTTL = settings.Server.RoomTTL
		redisCfg.ArchiveTTL = settings.Server.ArchiveTTL
		if cfg.RedisConfig != nil {
			redisCfg = *cfg.RedisConfig
		}
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// NATS is optional
	natsConn := cfg.NatsConn
	var dialled *natsgo.Conn
	if natsConn == nil && settings.Server.NatsURL != "" {
		nc, err := natsgo.Connect(settings.Server.NatsURL, natsgo.Name("tarot-server"))
		if err != nil {
			return nil, err
		}
		dialled = nc
		natsConn = nc
	}

	app := newWithDependencies(store, clock.New(), random.New(), settings, natsConn, logger)
	app.natsConn = dialled

	if app.ActionListener != nil {
		if err := app.ActionListener.Start(); err != nil {
			app.Close()
			return nil, err
		}
	}

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	settings config.Config,
	natsConn tarotnats.Conn,
	logger *slog.Logger,
) *App {
	m := metrics.New()
	hubManager := sse.NewHubManager(m, logger)

	sinks := room.Sinks{sse.NewBroadcaster(hubManager)}
	var natsSink *tarotnats.Sink
	if natsConn != nil {
		natsSink = tarotnats.NewSink(natsConn, m, logger)
		sinks = append(sinks, natsSink)
	}

	rooms := room.NewManager(store, sinks, clk, rnd, m, logger, room.Config{
		QueueSize: settings.Server.RoomQueueSize,
		Rules: func(gs model.GameSettings) tarot.RuleSet {
			return settings.RulesFor(gs)
		},
	})
	botService := bot.NewService(rooms, bot.DefaultStrategies(rnd), rnd, logger)

	app := &App{
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		Metrics:    m,
		Rooms:      rooms,
		BotService: botService,
		HubManager: hubManager,
		NatsSink:   natsSink,
		logger:     logger,
	}
	if natsConn != nil {
		app.ActionListener = tarotnats.NewActionListener(natsConn, app.Submit, logger)
	}
	return app
}

// Submit applies an action to a room, then lets the room's bots respond
func (a *App) Submit(ctx context.Context, roomID model.RoomID, action tarot.Action) error {
	r, err := a.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if _, err := r.Submit(ctx, action); err != nil {
		return err
	}
	if _, err := a.BotService.ProcessBotActions(ctx, roomID); err != nil {
		a.logger.Error("failed to process bot actions",
			slog.String("room_id", string(roomID)),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// Close stops every room and transport
func (a *App) Close() {
	if a.ActionListener != nil {
		a.ActionListener.Stop()
	}
	a.Rooms.Shutdown()
	a.HubManager.Close()
	if a.natsConn != nil {
		a.natsConn.Close()
	}
	if closer, ok := a.Storage.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}
}
