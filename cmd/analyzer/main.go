// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

// Package main is the entry point for the analyzer service: two consumer
// loops persisting the action and similarity topics into DuckDB, plus the
// HTTP query surface serving recommendations from that store.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventora/stats/internal/analyzer"
	"github.com/eventora/stats/internal/api"
	"github.com/eventora/stats/internal/config"
	"github.com/eventora/stats/internal/database"
	"github.com/eventora/stats/internal/logging"
	"github.com/eventora/stats/internal/recommend"
	"github.com/eventora/stats/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("db_path", cfg.Database.Path).
		Str("listen_addr", cfg.Analyzer.ListenAddr).
		Msg("Starting analyzer")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	handlers := api.NewAnalyzerHandlers(recommend.NewEngine(db))
	server := &http.Server{
		Addr:              cfg.Analyzer.ListenAddr,
		Handler:           api.NewAnalyzerRouter(handlers, db, cfg.Analyzer.RateLimit),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree("analyzer", logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Analyzer.ShutdownTimeout,
	})
	tree.AddStreamingService(analyzer.NewActionsService(&cfg.Kafka, db))
	tree.AddStreamingService(analyzer.NewSimilarityService(&cfg.Kafka, db))
	tree.AddAPIService(supervisor.NewHTTPServerService("analyzer-http", server, cfg.Analyzer.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Analyzer terminated abnormally")
	}
	logging.Info().Msg("Analyzer stopped")
}
