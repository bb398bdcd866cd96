// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

// Package main is the entry point for the collector service: the HTTP
// ingress that validates user interactions and publishes them to the
// action topic.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventora/stats/internal/api"
	"github.com/eventora/stats/internal/collector"
	"github.com/eventora/stats/internal/config"
	"github.com/eventora/stats/internal/kafka"
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
		Str("listen_addr", cfg.Collector.ListenAddr).
		Msg("Starting collector")

	producer, err := kafka.NewProducer(&cfg.Kafka)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create Kafka producer")
	}

	handlers := api.NewCollectorHandlers(collector.New(producer))
	server := &http.Server{
		Addr:              cfg.Collector.ListenAddr,
		Handler:           api.NewCollectorRouter(handlers, cfg.Collector.RateLimit),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree("collector", logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Collector.ShutdownTimeout,
	})
	tree.AddAPIService(supervisor.NewHTTPServerService("collector-http", server, cfg.Collector.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	producer.Close(flushCtx)
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Collector terminated abnormally")
	}
	logging.Info().Msg("Collector stopped")
}
