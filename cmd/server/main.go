package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"quipwit/internal/config"
	"quipwit/internal/game"
	"quipwit/internal/handlers"
	"quipwit/internal/prompts"
	"quipwit/internal/store"
	"quipwit/internal/ws"
)

func main() {
	// A .env file is a convenience for local runs; absence is fine.
	godotenv.Load()

	cfg, err := config.LoadConfig("")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(log)

	keys := config.NewAPIKeyStore()
	var primary prompts.Source
	if keys.HasAPIKey() {
		primary = prompts.NewAnthropicSource(keys.GetAPIKey())
		log.Info("anthropic prompt generation enabled")
	} else {
		log.Info("no api key configured, using built-in prompts")
	}
	source := prompts.NewFallback(primary, log)

	registry := store.NewRegistry(log)
	stopSweeper := make(chan struct{})
	registry.StartSweeper(cfg.Server.SweepInterval, cfg.Server.RoomMaxAge, stopSweeper)

	hub := ws.NewHub(log)
	registry.OnDelete(hub.DropRoom)
	engine := game.NewEngine(hub, source, log)
	h := handlers.NewHandler(cfg, registry, engine, hub, keys, source, log)
	hub.SetHandler(h)

	router := handlers.SetupRouter(h, cfg, nil)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout, // 0: websockets hold the response open
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	close(stopSweeper)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
	}
	hub.Close()
	log.Info("server stopped")
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
