// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

package aggregator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/eventora/stats/internal/avro"
	"github.com/eventora/stats/internal/config"
	"github.com/eventora/stats/internal/kafka"
	"github.com/eventora/stats/internal/logging"
	"github.com/eventora/stats/internal/metrics"
)

// producerFlushTimeout bounds the final flush of in-flight similarity
// records on shutdown.
const producerFlushTimeout = 10 * time.Second

// Service consumes the action topic, folds each interaction into the
// in-memory similarity model, and publishes every changed score to the
// similarity topic. It implements suture.Service.
//
// The model outlives consumer restarts within the process, so records
// redelivered after a restart hit the monotonic-weight no-op path instead of
// double-counting.
type Service struct {
	cfg   *config.KafkaConfig
	state *State
	log   zerolog.Logger
}

// New creates the aggregator service. Kafka clients are created per Serve
// run so a supervisor restart gets fresh connections.
func New(cfg *config.KafkaConfig) *Service {
	return &Service{
		cfg:   cfg,
		state: NewState(),
		log:   logging.Component("aggregator"),
	}
}

// String identifies the service in supervisor logs.
func (s *Service) String() string {
	return "aggregator"
}

// Serve runs the consume/aggregate/publish loop until the context is
// canceled. Any batch failure is returned so the supervisor restarts the
// service; unmarked records are then redelivered.
func (s *Service) Serve(ctx context.Context) error {
	producer, err := kafka.NewProducer(s.cfg)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), producerFlushTimeout)
		defer cancel()
		producer.Close(flushCtx)
	}()

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:        s.cfg.Brokers,
		ClientID:       s.cfg.ClientID,
		GroupID:        s.cfg.AggregatorGroup,
		Topic:          kafka.TopicUserActions,
		PollTimeout:    s.cfg.PollTimeout,
		CommitInterval: s.cfg.CommitInterval,
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("topic", kafka.TopicUserActions).
		Str("group", s.cfg.AggregatorGroup).
		Msg("Aggregator started")

	return consumer.Run(ctx, func(ctx context.Context, rec *kgo.Record) error {
		return s.handleRecord(ctx, producer, rec)
	})
}

// handleRecord processes one action record. Decode failures are isolated to
// the record; publish failures surface asynchronously and are not tied to
// offset progress, which at-least-once delivery plus the downstream
// timestamp guard make acceptable.
func (s *Service) handleRecord(ctx context.Context, producer *kafka.Producer, rec *kgo.Record) error {
	in, err := avro.UnmarshalUserAction(rec.Topic, rec.Value)
	if err != nil {
		var derr *avro.DeserializationError
		if errors.As(err, &derr) {
			metrics.KafkaDecodeFailures.WithLabelValues(rec.Topic, s.cfg.AggregatorGroup).Inc()
			s.log.Warn().Err(err).
				Int64("offset", rec.Offset).
				Int32("partition", rec.Partition).
				Msg("Skipping undecodable action record")
			return nil
		}
		return err
	}

	updates := s.state.Apply(in)
	for _, sim := range updates {
		payload, err := avro.MarshalEventSimilarity(sim)
		if err != nil {
			return err
		}
		producer.PublishAsync(ctx, kafka.TopicEventsSimilarity, sim.EventA, sim.ActionDate, payload)
		metrics.AggregatorSimilarityUpdates.Inc()
	}
	metrics.AggregatorTrackedEvents.Set(float64(s.state.EventCount()))

	if len(updates) > 0 {
		s.log.Debug().
			Int64("event_id", in.EventID).
			Int64("user_id", in.UserID).
			Int("updates", len(updates)).
			Msg("Similarity scores updated")
	}
	return nil
}
