// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"

	"github.com/eventora/stats/internal/logging"
	"github.com/eventora/stats/internal/metrics"
)

// shutdownCommitTimeout bounds the final synchronous offset commit.
const shutdownCommitTimeout = 10 * time.Second

// ConsumerConfig describes one consumer-group subscription.
type ConsumerConfig struct {
	Brokers        []string
	ClientID       string
	GroupID        string
	Topic          string
	PollTimeout    time.Duration
	CommitInterval time.Duration
}

// Handler processes a single fetched record. Returning an error aborts the
// current batch: its remaining records are not processed and the offsets of
// the failed record onward are not marked, so a restarted consumer picks up
// from the last commit - at-least-once delivery, which the idempotent merge
// rules downstream are designed to absorb.
type Handler func(ctx context.Context, rec *kgo.Record) error

// Consumer runs a poll loop over one topic with manual offset management:
// processed records are marked, marked offsets are committed asynchronously
// on an interval, and shutdown performs one synchronous commit before
// closing the client.
type Consumer struct {
	client *kgo.Client
	cfg    ConsumerConfig
}

// NewConsumer creates a consumer-group client for the given subscription.
// A fresh group id starts at the beginning of the topic; this is also the
// cold-start replay path for the aggregator's in-memory state.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	group := cfg.GroupID
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.AutoCommitMarks(),
		kgo.AutoCommitInterval(cfg.CommitInterval),
		kgo.AutoCommitCallback(func(_ *kgo.Client, _ *kmsg.OffsetCommitRequest, _ *kmsg.OffsetCommitResponse, err error) {
			if err != nil {
				metrics.KafkaCommitErrors.WithLabelValues(group).Inc()
				logging.Warn().Err(err).Str("group", group).Msg("Offset commit failed")
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer for %s: %w", cfg.Topic, err)
	}
	return &Consumer{client: client, cfg: cfg}, nil
}

// Run polls until the context is canceled or a handler reports a batch
// failure. A batch once started is processed to completion (or first error)
// before cancellation is observed; cancellation interrupts only the poll.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	log := logging.Component("consumer").With().
		Str("topic", c.cfg.Topic).
		Str("group", c.cfg.GroupID).
		Logger()
	defer c.shutdown(log)

	pollTimeout := c.cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}

	for {
		pollCtx, cancel := context.WithTimeout(ctx, pollTimeout)
		fetches := c.client.PollFetches(pollCtx)
		cancel()
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			// An expired poll deadline is the idle case, not a fault.
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return
			}
			log.Warn().Err(err).
				Str("fetch_topic", topic).
				Int32("partition", partition).
				Msg("Fetch error")
		})

		var records []*kgo.Record
		fetches.EachRecord(func(rec *kgo.Record) {
			records = append(records, rec)
		})
		if len(records) > 0 {
			log.Debug().Int("count", len(records)).Msg("Processing batch")
		}

		for _, rec := range records {
			if err := handle(ctx, rec); err != nil {
				return fmt.Errorf("batch failed at %s[%d]@%d: %w",
					rec.Topic, rec.Partition, rec.Offset, err)
			}
			c.client.MarkCommitRecords(rec)
			metrics.KafkaRecordsConsumed.WithLabelValues(c.cfg.Topic, c.cfg.GroupID).Inc()
		}
	}
}

// shutdown commits all marked offsets synchronously, then closes the client.
// This bounds at-least-once redelivery to the last unmarked records.
func (c *Consumer) shutdown(log zerolog.Logger) {
	commitCtx, cancel := context.WithTimeout(context.Background(), shutdownCommitTimeout)
	defer cancel()

	if err := c.client.CommitMarkedOffsets(commitCtx); err != nil {
		metrics.KafkaCommitErrors.WithLabelValues(c.cfg.GroupID).Inc()
		log.Warn().Err(err).Msg("Final offset commit failed")
	}
	log.Info().Msg("Closing consumer")
	c.client.Close()
}
