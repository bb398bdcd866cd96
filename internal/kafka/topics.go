// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

// Package kafka wraps franz-go with the pipeline's producer and consumer
// conventions: int64 big-endian record keys, explicit record timestamps, and
// a poll/process/mark loop with asynchronous batch commits and one
// synchronous commit on shutdown.
package kafka

import "encoding/binary"

// Topic names are fixed wire contracts shared with every producer and
// consumer of the stats pipeline.
const (
	// TopicUserActions carries one record per user interaction, keyed by
	// event id.
	TopicUserActions = "stats.user-actions.v1"

	// TopicEventsSimilarity carries updated pairwise similarity facts,
	// keyed by the smaller event id of the pair.
	TopicEventsSimilarity = "stats.events-similarity.v1"
)

// EncodeEventKey encodes an event id as a big-endian record key so that all
// records for one event land on one partition, preserving their order.
func EncodeEventKey(eventID int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(eventID))
	return key
}

// DecodeEventKey decodes a big-endian record key back into an event id.
func DecodeEventKey(key []byte) int64 {
	if len(key) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(key))
}
