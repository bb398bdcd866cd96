// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

// Package collector is the write-side ingress of the stats pipeline: it
// turns a validated interaction into exactly one record on the action topic.
//
// There is no local buffering or retry. A publish failure surfaces to the
// caller, who owns the retry policy; a success means the broker has the
// record and the rest of the pipeline will see it.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventora/stats/internal/avro"
	"github.com/eventora/stats/internal/kafka"
	"github.com/eventora/stats/internal/logging"
	"github.com/eventora/stats/internal/models"
)

// Publisher produces one record synchronously. *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, eventID int64, timestamp time.Time, value []byte) error
}

// Collector accepts interactions and publishes them to the action topic.
type Collector struct {
	publisher Publisher
	log       zerolog.Logger
}

// New creates a collector over the given publisher.
func New(publisher Publisher) *Collector {
	return &Collector{
		publisher: publisher,
		log:       logging.Component("collector"),
	}
}

// CollectAction publishes one interaction, keyed by event id with the
// interaction's timestamp as the record timestamp. The caller must have
// validated the action type; an unknown type fails encoding here as a last
// line of defense.
func (c *Collector) CollectAction(ctx context.Context, in models.Interaction) error {
	if !in.ActionType.Valid() {
		return fmt.Errorf("unknown action type %q", in.ActionType)
	}

	payload, err := avro.MarshalUserAction(in)
	if err != nil {
		return err
	}
	if err := c.publisher.Publish(ctx, kafka.TopicUserActions, in.EventID, in.Timestamp, payload); err != nil {
		return err
	}

	c.log.Debug().
		Int64("user_id", in.UserID).
		Int64("event_id", in.EventID).
		Str("action_type", string(in.ActionType)).
		Msg("Action collected")
	return nil
}
