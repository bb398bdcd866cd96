// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

// Package aggregator maintains the event-similarity graph incrementally.
//
// For every interaction (user u, event E, weight w) consumed from the action
// topic, the engine updates per-event weight vectors and the co-engagement
// mass between E and each event u has touched, then re-derives the affected
// pairwise scores:
//
//	score(A, B) = Σ_u min(w_u(A), w_u(B)) / sqrt(Σ_u w_u(A) * Σ_u w_u(B))
//
// The update cost is O(events touched by u), never O(all event pairs), and
// the steady-state result is identical to recomputing every score from the
// full weight vectors.
//
// State lives only in memory and is owned exclusively by the single consumer
// goroutine. It is rebuilt by replaying the action topic from the beginning
// (a fresh consumer group starts at the earliest offset). Events are never
// evicted from the model; cold-state eviction is an open follow-up.
//
// A weight that does not exceed the previously recorded weight for the same
// (user, event) pair carries no new information and produces no update and
// no emission. This monotonic-weight rule is what makes redelivered records
// harmless.
package aggregator
