package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tarot-go2/internal/api/handler"
	"github.com/mcoot/tarot-go2/internal/api/middleware"
	"github.com/mcoot/tarot-go2/internal/metrics"
	coremiddleware "github.com/mcoot/tarot-go2/internal/middleware"
	"github.com/mcoot/tarot-go2/internal/services/bot"
	"github.com/mcoot/tarot-go2/internal/services/room"
	"github.com/mcoot/tarot-go2/internal/web/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Rooms      *room.Manager
	BotService *bot.Service
	Hubs       *sse.HubManager
	Metrics    *metrics.Metrics
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Rooms, cfg.BotService, cfg.Hubs, cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(coremiddleware.Logging(cfg.Logger))
	api.Use(middleware.Identity())

	// Room routes; a player ID is only required to act
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}", roomHandler.Close).Methods(http.MethodDelete)
	api.HandleFunc("/rooms/{id}/state", roomHandler.State).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}/actions", roomHandler.Act).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{id}/history", roomHandler.History).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}/next-hand", roomHandler.NextHand).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{id}/hands", roomHandler.Hands).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}/hands/{number}", roomHandler.Hand).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}/bots", roomHandler.AddBot).Methods(http.MethodPost)

	// Streams
	api.HandleFunc("/rooms/{id}/events", roomHandler.Events).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}/ws", roomHandler.WebSocket).Methods(http.MethodGet)

	api.HandleFunc("/bots/strategies", roomHandler.Strategies).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
