// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/eventora/stats/internal/config"
	"github.com/eventora/stats/internal/logging"
	"github.com/eventora/stats/internal/metrics"
)

// Producer publishes records keyed by event id. The record timestamp is
// always the interaction timestamp, not the publish time, so downstream
// last-write-wins merges stay correct under redelivery.
type Producer struct {
	client *kgo.Client
}

// NewProducer creates a producer connected to the configured brokers.
func NewProducer(cfg *config.KafkaConfig) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &Producer{client: client}, nil
}

// Publish synchronously produces one record and reports its outcome.
// Callers own the retry policy; there is no local buffering or retry.
func (p *Producer) Publish(ctx context.Context, topic string, eventID int64, timestamp time.Time, value []byte) error {
	rec := &kgo.Record{
		Topic:     topic,
		Key:       EncodeEventKey(eventID),
		Value:     value,
		Timestamp: timestamp,
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		metrics.KafkaPublishErrors.WithLabelValues(topic).Inc()
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	metrics.KafkaRecordsPublished.WithLabelValues(topic).Inc()
	return nil
}

// PublishAsync produces one record without waiting for acknowledgement.
// Failures are logged and counted; Close flushes everything in flight.
func (p *Producer) PublishAsync(ctx context.Context, topic string, eventID int64, timestamp time.Time, value []byte) {
	rec := &kgo.Record{
		Topic:     topic,
		Key:       EncodeEventKey(eventID),
		Value:     value,
		Timestamp: timestamp,
	}
	p.client.Produce(ctx, rec, func(r *kgo.Record, err error) {
		if err != nil {
			metrics.KafkaPublishErrors.WithLabelValues(r.Topic).Inc()
			logging.Error().Err(err).
				Str("topic", r.Topic).
				Int64("event_id", DecodeEventKey(r.Key)).
				Msg("Async publish failed")
			return
		}
		metrics.KafkaRecordsPublished.WithLabelValues(r.Topic).Inc()
	})
}

// Close flushes in-flight records and releases the client.
func (p *Producer) Close(ctx context.Context) {
	if err := p.client.Flush(ctx); err != nil {
		logging.Warn().Err(err).Msg("Producer flush failed during shutdown")
	}
	p.client.Close()
}
