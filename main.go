// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/db"
	"github.com/danielhkuo/livepoll/live"
	"github.com/danielhkuo/livepoll/metrics"
	"github.com/danielhkuo/livepoll/router"
	"github.com/danielhkuo/livepoll/survey"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}
	if err := setupLogging(cfg); err != nil {
		slog.Error("Error configuring logging", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func setupLogging(cfg cliparse.Config) error {
	level, err := cliparse.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func run(cfg cliparse.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	svc := survey.NewService(dbConn)
	m := metrics.New()

	opts := []live.Option{live.WithMetrics(m)}
	var relay *live.RedisRelay
	if cfg.RedisURL != "" {
		client, err := live.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		relay = live.NewRedisRelay(client)
		opts = append(opts, live.WithRelay(relay))
	}
	hub := live.NewHub(svc, opts...)
	defer func() {
		if err := hub.Close(); err != nil {
			slog.Warn("failed to close hub", "error", err)
		}
	}()

	if relay != nil {
		if err := relay.Start(ctx, hub.Deliver); err != nil {
			return err
		}
	}

	server := &http.Server{
		Handler:           router.NewRouter(svc, hub, m, cfg),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Listening", "port", cfg.Port, "redis_relay", relay != nil)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown incomplete", "error", err)
		server.Close()
	}
	slog.Info("Server closed")
	return nil
}
