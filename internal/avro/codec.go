// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

package avro

import (
	"fmt"
	"time"

	"github.com/hamba/avro/v2"

	"github.com/eventora/stats/internal/models"
)

// DeserializationError wraps a record decode failure. Consumer loops treat
// it as a per-record fault: the record is logged, counted, and skipped -
// never allowed to terminate the loop.
type DeserializationError struct {
	Topic string
	Err   error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("failed to deserialize record from %s: %v", e.Topic, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// UserActionRecord is the wire form of an interaction on the action topic.
type UserActionRecord struct {
	UserID     int64     `avro:"userId"`
	EventID    int64     `avro:"eventId"`
	ActionType string    `avro:"actionType"`
	Timestamp  time.Time `avro:"timestamp"`
}

// EventSimilarityRecord is the wire form of a similarity fact on the
// similarity topic.
type EventSimilarityRecord struct {
	EventA    int64     `avro:"eventA"`
	EventB    int64     `avro:"eventB"`
	Score     float64   `avro:"score"`
	Timestamp time.Time `avro:"timestamp"`
}

// MarshalUserAction encodes an interaction for the action topic.
// Timestamps are truncated to millisecond precision by the wire format.
func MarshalUserAction(in models.Interaction) ([]byte, error) {
	rec := UserActionRecord{
		UserID:     in.UserID,
		EventID:    in.EventID,
		ActionType: string(in.ActionType),
		Timestamp:  in.Timestamp,
	}
	data, err := avro.Marshal(UserActionSchema, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user action: %w", err)
	}
	return data, nil
}

// UnmarshalUserAction decodes an action-topic record.
func UnmarshalUserAction(topic string, data []byte) (models.Interaction, error) {
	var rec UserActionRecord
	if err := avro.Unmarshal(UserActionSchema, data, &rec); err != nil {
		return models.Interaction{}, &DeserializationError{Topic: topic, Err: err}
	}
	actionType, err := models.ParseActionType(rec.ActionType)
	if err != nil {
		return models.Interaction{}, &DeserializationError{Topic: topic, Err: err}
	}
	return models.Interaction{
		UserID:     rec.UserID,
		EventID:    rec.EventID,
		ActionType: actionType,
		Timestamp:  rec.Timestamp.UTC(),
	}, nil
}

// MarshalEventSimilarity encodes a similarity fact for the similarity topic.
func MarshalEventSimilarity(sim models.EventSimilarity) ([]byte, error) {
	rec := EventSimilarityRecord{
		EventA:    sim.EventA,
		EventB:    sim.EventB,
		Score:     sim.Score,
		Timestamp: sim.ActionDate,
	}
	data, err := avro.Marshal(EventSimilaritySchema, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event similarity: %w", err)
	}
	return data, nil
}

// UnmarshalEventSimilarity decodes a similarity-topic record.
func UnmarshalEventSimilarity(topic string, data []byte) (models.EventSimilarity, error) {
	var rec EventSimilarityRecord
	if err := avro.Unmarshal(EventSimilaritySchema, data, &rec); err != nil {
		return models.EventSimilarity{}, &DeserializationError{Topic: topic, Err: err}
	}
	return models.EventSimilarity{
		EventA:     rec.EventA,
		EventB:     rec.EventB,
		Score:      rec.Score,
		ActionDate: rec.Timestamp.UTC(),
	}, nil
}
