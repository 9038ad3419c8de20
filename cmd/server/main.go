package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/tarot-go2/internal/api"
	"github.com/mcoot/tarot-go2/internal/config"
	"github.com/mcoot/tarot-go2/internal/factory"
)

// envConfigPath names the optional YAML config file
const envConfigPath = "TAROT_CONFIG"

func main() {
	// Load configuration: file, then environment overrides
	settings, err := config.FromEnv(os.Getenv(envConfigPath), os.Getenv)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: settings.LogLevel(),
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(factory.Config{
		Settings: settings,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Rooms:      app.Rooms,
		BotService: app.BotService,
		Hubs:       app.HubManager,
		Metrics:    app.Metrics,
	})

	// Create server
	serverConfig, err := api.ServerConfigFrom(settings.Server)
	if err != nil {
		logger.Error("invalid server config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	server := api.NewServer(apiRouter, serverConfig, logger)
	server.OnShutdown(app.HubManager.Close)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", settings.Server.StorageType),
		slog.Bool("nats", settings.Server.NatsURL != ""),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
