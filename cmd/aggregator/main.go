// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

// Package main is the entry point for the aggregator service: the single
// consumer loop that folds the action topic into the in-memory similarity
// model and publishes every changed score to the similarity topic.
//
// The model lives only in memory; on a fresh consumer group the loop
// replays the action topic from the beginning to rebuild it.
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/eventora/stats/internal/aggregator"
	"github.com/eventora/stats/internal/config"
	"github.com/eventora/stats/internal/logging"
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
		Str("group", cfg.Kafka.AggregatorGroup).
		Msg("Starting aggregator")

	tree := supervisor.NewTree("aggregator", logging.NewSlogLogger(), supervisor.TreeConfig{})
	tree.AddStreamingService(aggregator.New(&cfg.Kafka))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Aggregator terminated abnormally")
	}
	logging.Info().Msg("Aggregator stopped")
}
