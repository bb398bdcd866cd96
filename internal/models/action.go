// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

package models

import (
	"fmt"
	"time"
)

// ActionType classifies a user interaction with an event.
type ActionType string

const (
	// ActionView indicates the user opened the event page.
	ActionView ActionType = "VIEW"
	// ActionRegister indicates the user requested participation.
	ActionRegister ActionType = "REGISTER"
	// ActionLike indicates the user liked the event.
	ActionLike ActionType = "LIKE"
)

// Weight returns the engagement weight for this action type.
// Stronger engagement always maps to a larger weight; the recommendation
// model depends on this total order.
func (t ActionType) Weight() float64 {
	switch t {
	case ActionView:
		return 0.4
	case ActionRegister:
		return 0.8
	case ActionLike:
		return 1.0
	default:
		return 0.0
	}
}

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool {
	switch t {
	case ActionView, ActionRegister, ActionLike:
		return true
	default:
		return false
	}
}

// ParseActionType converts a wire string into an ActionType.
// Unknown values are rejected rather than coerced.
func ParseActionType(s string) (ActionType, error) {
	t := ActionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown action type %q", s)
	}
	return t, nil
}

// Interaction is a single user action against an event as accepted at
// ingress. It is never persisted directly; it lives only as a record on the
// action topic.
type Interaction struct {
	UserID     int64      `json:"userId"`
	EventID    int64      `json:"eventId"`
	ActionType ActionType `json:"actionType"`
	Timestamp  time.Time  `json:"timestamp"`
}

// UserAction is the persisted engagement row for one (event, user) pair.
//
// Weight is the maximum weight ever observed for the pair and
// LastActionDate the most recent timestamp seen; the two fields advance
// independently of each other.
type UserAction struct {
	EventID        int64     `json:"eventId"`
	UserID         int64     `json:"userId"`
	LastActionDate time.Time `json:"lastActionDate"`
	Weight         float64   `json:"weight"`
}

// RecommendedEvent is a scored event returned by the query engine.
type RecommendedEvent struct {
	EventID int64   `json:"eventId"`
	Score   float64 `json:"score"`
}
