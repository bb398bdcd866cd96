// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

// Package config provides layered configuration for the stats services using
// Koanf v2: struct defaults, then an optional YAML config file, then
// environment variables (highest priority).
package config

import (
	"fmt"
	"time"

	"github.com/eventora/stats/internal/validation"
)

// Config is the root configuration shared by the collector, aggregator, and
// analyzer binaries. Each binary reads only the sections it needs.
type Config struct {
	Logging   LoggingConfig   `koanf:"logging"`
	Kafka     KafkaConfig     `koanf:"kafka"`
	Database  DatabaseConfig  `koanf:"database"`
	Collector CollectorConfig `koanf:"collector"`
	Analyzer  AnalyzerConfig  `koanf:"analyzer"`
}

// LoggingConfig controls the zerolog backend.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// KafkaConfig holds broker connectivity and consumer-group settings.
//
// Topic names are fixed wire contracts and live in the kafka package; only
// deployment-specific knobs are configurable.
type KafkaConfig struct {
	Brokers        []string      `koanf:"brokers" validate:"required,min=1,dive,required"`
	ClientID       string        `koanf:"client_id" validate:"required"`
	PollTimeout    time.Duration `koanf:"poll_timeout" validate:"gt=0"`
	CommitInterval time.Duration `koanf:"commit_interval" validate:"gt=0"`

	// Consumer group ids. The aggregator group replays the action topic
	// from the beginning on a fresh group to rebuild its in-memory state.
	AggregatorGroup string `koanf:"aggregator_group" validate:"required"`
	ActionsGroup    string `koanf:"actions_group" validate:"required"`
	SimilarityGroup string `koanf:"similarity_group" validate:"required"`
}

// DatabaseConfig holds DuckDB settings for the analyzer store.
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory" validate:"required"`
	Threads   int    `koanf:"threads" validate:"gte=0"`
}

// CollectorConfig holds the ingress HTTP server settings.
type CollectorConfig struct {
	ListenAddr      string        `koanf:"listen_addr" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	RateLimit       int           `koanf:"rate_limit" validate:"gt=0"`
}

// AnalyzerConfig holds the query HTTP server settings.
type AnalyzerConfig struct {
	ListenAddr      string        `koanf:"listen_addr" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	RateLimit       int           `koanf:"rate_limit" validate:"gt=0"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Kafka: KafkaConfig{
			Brokers:         []string{"127.0.0.1:9092"},
			ClientID:        "eventora-stats",
			PollTimeout:     5 * time.Second,
			CommitInterval:  5 * time.Second,
			AggregatorGroup: "stats.aggregator",
			ActionsGroup:    "stats.analyzer.user-actions",
			SimilarityGroup: "stats.analyzer.events-similarity",
		},
		Database: DatabaseConfig{
			Path:      "/data/eventora-stats.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Collector: CollectorConfig{
			ListenAddr:      ":8081",
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       1000,
		},
		Analyzer: AnalyzerConfig{
			ListenAddr:      ":8082",
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       1000,
		},
	}
}

// Validate checks the configuration for invalid or missing values.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("invalid configuration: %w", verr)
	}
	return nil
}
