// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

package models

import "time"

// EventPair is the canonical unordered pair of event ids, with A < B.
//
// All similarity state and storage is keyed by EventPair so that exactly one
// row ever exists per unordered pair. Construct it only through NewEventPair.
type EventPair struct {
	A int64
	B int64
}

// NewEventPair returns the canonical pair for two event ids.
func NewEventPair(x, y int64) EventPair {
	if x < y {
		return EventPair{A: x, B: y}
	}
	return EventPair{A: y, B: x}
}

// Other returns the opposite side of the pair from the given event id.
// If id is on neither side, B is returned.
func (p EventPair) Other(id int64) int64 {
	if p.A == id {
		return p.B
	}
	return p.A
}

// Contains reports whether id is one of the pair's sides.
func (p EventPair) Contains(id int64) bool {
	return p.A == id || p.B == id
}

// EventSimilarity is one pairwise similarity fact between two events.
//
// Score is the current cosine-like similarity in [0, 1] and ActionDate the
// timestamp of the interaction that produced it. Persisted updates are
// accepted only when the incoming ActionDate is strictly newer than the
// stored one, so out-of-order and duplicate deliveries cannot regress the
// row.
type EventSimilarity struct {
	EventA     int64     `json:"eventA"`
	EventB     int64     `json:"eventB"`
	Score      float64   `json:"score"`
	ActionDate time.Time `json:"actionDate"`
}

// Pair returns the canonical pair key for the row.
func (s EventSimilarity) Pair() EventPair {
	return NewEventPair(s.EventA, s.EventB)
}
