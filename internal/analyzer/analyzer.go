// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

// Package analyzer persists the two Kafka logs into the query store.
//
// Two consumer loops run as independent supervised services with separate
// consumer groups: one folds the action topic into users_actions, the other
// folds the similarity topic into events_similarity. The loops share nothing
// but the database, whose merge rules (monotonic weights, timestamp-gated
// scores) make both idempotent under at-least-once delivery.
package analyzer

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/eventora/stats/internal/avro"
	"github.com/eventora/stats/internal/config"
	"github.com/eventora/stats/internal/kafka"
	"github.com/eventora/stats/internal/logging"
	"github.com/eventora/stats/internal/metrics"
	"github.com/eventora/stats/internal/models"
)

// Store is the write side of the query store. *database.DB satisfies it.
type Store interface {
	UpsertUserAction(ctx context.Context, action models.UserAction) error
	UpsertEventSimilarity(ctx context.Context, sim models.EventSimilarity) error
}

// ActionsService consumes the action topic and persists engagement rows.
// It implements suture.Service.
type ActionsService struct {
	cfg   *config.KafkaConfig
	store Store
	log   zerolog.Logger
}

// NewActionsService creates the action-ingestion service.
func NewActionsService(cfg *config.KafkaConfig, store Store) *ActionsService {
	return &ActionsService{
		cfg:   cfg,
		store: store,
		log:   logging.Component("analyzer.actions"),
	}
}

func (s *ActionsService) String() string {
	return "analyzer.actions"
}

// Serve consumes until the context is canceled. Persistence failures abort
// the batch and restart the service; the failed record is redelivered.
func (s *ActionsService) Serve(ctx context.Context) error {
	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:        s.cfg.Brokers,
		ClientID:       s.cfg.ClientID,
		GroupID:        s.cfg.ActionsGroup,
		Topic:          kafka.TopicUserActions,
		PollTimeout:    s.cfg.PollTimeout,
		CommitInterval: s.cfg.CommitInterval,
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("topic", kafka.TopicUserActions).
		Str("group", s.cfg.ActionsGroup).
		Msg("Action ingestion started")
	return consumer.Run(ctx, s.handleRecord)
}

func (s *ActionsService) handleRecord(ctx context.Context, rec *kgo.Record) error {
	in, err := avro.UnmarshalUserAction(rec.Topic, rec.Value)
	if err != nil {
		return skipIfUndecodable(s.log, s.cfg.ActionsGroup, rec, err)
	}

	return s.store.UpsertUserAction(ctx, models.UserAction{
		EventID:        in.EventID,
		UserID:         in.UserID,
		LastActionDate: in.Timestamp,
		Weight:         in.ActionType.Weight(),
	})
}

// SimilarityService consumes the similarity topic and persists scores.
// It implements suture.Service.
type SimilarityService struct {
	cfg   *config.KafkaConfig
	store Store
	log   zerolog.Logger
}

// NewSimilarityService creates the similarity-ingestion service.
func NewSimilarityService(cfg *config.KafkaConfig, store Store) *SimilarityService {
	return &SimilarityService{
		cfg:   cfg,
		store: store,
		log:   logging.Component("analyzer.similarity"),
	}
}

func (s *SimilarityService) String() string {
	return "analyzer.similarity"
}

// Serve consumes until the context is canceled.
func (s *SimilarityService) Serve(ctx context.Context) error {
	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:        s.cfg.Brokers,
		ClientID:       s.cfg.ClientID,
		GroupID:        s.cfg.SimilarityGroup,
		Topic:          kafka.TopicEventsSimilarity,
		PollTimeout:    s.cfg.PollTimeout,
		CommitInterval: s.cfg.CommitInterval,
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("topic", kafka.TopicEventsSimilarity).
		Str("group", s.cfg.SimilarityGroup).
		Msg("Similarity ingestion started")
	return consumer.Run(ctx, s.handleRecord)
}

func (s *SimilarityService) handleRecord(ctx context.Context, rec *kgo.Record) error {
	sim, err := avro.UnmarshalEventSimilarity(rec.Topic, rec.Value)
	if err != nil {
		return skipIfUndecodable(s.log, s.cfg.SimilarityGroup, rec, err)
	}
	return s.store.UpsertEventSimilarity(ctx, sim)
}

// skipIfUndecodable swallows per-record decode failures so one poison record
// cannot wedge a loop; anything else propagates as a batch failure.
func skipIfUndecodable(log zerolog.Logger, group string, rec *kgo.Record, err error) error {
	var derr *avro.DeserializationError
	if errors.As(err, &derr) {
		metrics.KafkaDecodeFailures.WithLabelValues(rec.Topic, group).Inc()
		log.Warn().Err(err).
			Int64("offset", rec.Offset).
			Int32("partition", rec.Partition).
			Msg("Skipping undecodable record")
		return nil
	}
	return err
}
