// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

// Package models defines the shared value types for the recommendation
// pipeline.
//
// The pipeline deals in three facts:
//
//   - Interaction: one user touching one event (view, register, like).
//     Ephemeral - it only ever exists as a log record on the action topic.
//   - UserAction: the durable per-(event, user) engagement row. Its weight is
//     the maximum weight ever observed for the pair, which is what makes
//     replays idempotent.
//   - EventSimilarity: one pairwise similarity fact between two events,
//     always stored with EventA < EventB.
//
// The EventA < EventB invariant is enforced in exactly one place,
// NewEventPair, so that no caller can produce the same unordered pair under
// two keys.
package models
