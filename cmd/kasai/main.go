package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/smartkas-app/kasai/internal/anomaly"
	"github.com/smartkas-app/kasai/internal/api"
	"github.com/smartkas-app/kasai/internal/assistant"
	"github.com/smartkas-app/kasai/internal/config"
	"github.com/smartkas-app/kasai/internal/kolosal"
	"github.com/smartkas-app/kasai/internal/mirror"
	"github.com/smartkas-app/kasai/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("kasai starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// Model gateway
	if cfg.KolosalAPIKey == "" {
		slog.Error("KOLOSAL_API_KEY is required")
		os.Exit(1)
	}
	gateway := kolosal.NewClient(cfg.KolosalAPIKey, cfg.KolosalModel)
	slog.Info("model gateway ready", "model", cfg.KolosalModel)

	// Mirror publisher is optional; turns work without it, just no search sync.
	var pub *mirror.Publisher
	if cfg.NatsURL != "" {
		pub, err = mirror.NewPublisher(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Warn("mirror publisher unavailable, continuing without", "error", err)
		} else {
			defer pub.Close()
			slog.Info("mirror publisher connected", "url", cfg.NatsURL)
		}
	}

	var asst *assistant.Assistant
	var det *anomaly.Detector
	if pub != nil {
		asst = assistant.New(db, gateway, pub, slog.Default())
		det = anomaly.NewDetector(db, gateway, pub, slog.Default())
	} else {
		asst = assistant.New(db, gateway, nil, slog.Default())
		det = anomaly.NewDetector(db, gateway, nil, slog.Default())
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, asst, det, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("kasai ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("kasai stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
