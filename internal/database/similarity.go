// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/eventora/stats/internal/metrics"
	"github.com/eventora/stats/internal/models"
)

// UpsertEventSimilarity merges one similarity fact into events_similarity.
//
// The pair is canonicalized before writing so both orderings of the same two
// events hit the same row. An existing row is overwritten only when the
// incoming action_date is strictly newer, which keeps redelivered and
// reordered records from regressing the score.
func (db *DB) UpsertEventSimilarity(ctx context.Context, sim models.EventSimilarity) error {
	pair := sim.Pair()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO events_similarity (event_a, event_b, score, action_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (event_a, event_b) DO UPDATE SET
			score = EXCLUDED.score,
			action_date = EXCLUDED.action_date
		WHERE EXCLUDED.action_date > action_date`,
		pair.A, pair.B, sim.Score, sim.ActionDate)
	metrics.ObserveDBQuery("upsert", "events_similarity", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert similarity (%d, %d): %w", pair.A, pair.B, err)
	}
	return nil
}

// SimilaritiesTouching returns every similarity row with at least one side
// among the given events, ordered by score descending. Ties are broken by
// the pair key so the order is stable across calls.
func (db *DB) SimilaritiesTouching(ctx context.Context, eventIDs []int64) ([]models.EventSimilarity, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}

	in := placeholders(len(eventIDs))
	args := make([]any, 0, 2*len(eventIDs))
	for range 2 {
		for _, id := range eventIDs {
			args = append(args, id)
		}
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT event_a, event_b, score, action_date
		FROM events_similarity
		WHERE event_a IN (%s) OR event_b IN (%s)
		ORDER BY score DESC, event_a, event_b`,
		in, in), args...)
	metrics.ObserveDBQuery("select_touching", "events_similarity", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query similarities: %w", err)
	}
	defer rows.Close()

	var sims []models.EventSimilarity
	for rows.Next() {
		var s models.EventSimilarity
		if err := rows.Scan(&s.EventA, &s.EventB, &s.Score, &s.ActionDate); err != nil {
			return nil, fmt.Errorf("failed to scan similarity: %w", err)
		}
		sims = append(sims, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read similarities: %w", err)
	}
	return sims, nil
}
