// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

// Package avro implements the Avro wire format for the two Kafka topics.
//
// The schemas are fixed external contracts shared with every producer and
// consumer of the action and similarity logs; changing them is a breaking
// wire change and requires a new topic version.
package avro

import "github.com/hamba/avro/v2"

// userActionSchemaJSON is the schema for records on stats.user-actions.v1.
const userActionSchemaJSON = `{
  "type": "record",
  "name": "UserActionAvro",
  "namespace": "io.eventora.stats.avro",
  "fields": [
    {"name": "userId", "type": "long"},
    {"name": "eventId", "type": "long"},
    {"name": "actionType", "type": {
      "type": "enum",
      "name": "ActionTypeAvro",
      "symbols": ["VIEW", "REGISTER", "LIKE"]
    }},
    {"name": "timestamp", "type": {"type": "long", "logicalType": "timestamp-millis"}}
  ]
}`

// eventSimilaritySchemaJSON is the schema for records on
// stats.events-similarity.v1.
const eventSimilaritySchemaJSON = `{
  "type": "record",
  "name": "EventSimilarityAvro",
  "namespace": "io.eventora.stats.avro",
  "fields": [
    {"name": "eventA", "type": "long"},
    {"name": "eventB", "type": "long"},
    {"name": "score", "type": "double"},
    {"name": "timestamp", "type": {"type": "long", "logicalType": "timestamp-millis"}}
  ]
}`

var (
	// UserActionSchema is the parsed schema for the action topic.
	UserActionSchema = avro.MustParse(userActionSchemaJSON)

	// EventSimilaritySchema is the parsed schema for the similarity topic.
	EventSimilaritySchema = avro.MustParse(eventSimilaritySchemaJSON)
)
