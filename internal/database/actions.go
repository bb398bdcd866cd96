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

// UpsertUserAction merges one engagement fact into users_actions.
//
// Weight and last_action_date advance independently: a redelivered weaker
// action can still carry a newer timestamp, and a reordered stronger action
// can carry an older one. GREATEST on both columns makes either delivery
// order converge to the same row.
func (db *DB) UpsertUserAction(ctx context.Context, action models.UserAction) error {
	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO users_actions (event_id, user_id, last_action_date, weight)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (event_id, user_id) DO UPDATE SET
			weight = GREATEST(weight, EXCLUDED.weight),
			last_action_date = GREATEST(last_action_date, EXCLUDED.last_action_date)`,
		action.EventID, action.UserID, action.LastActionDate, action.Weight)
	metrics.ObserveDBQuery("upsert", "users_actions", start, err)
	if err != nil {
		return fmt.Errorf("failed to upsert user action (event %d, user %d): %w",
			action.EventID, action.UserID, err)
	}
	return nil
}

// RecentEventsByUser returns the ids of the events the user interacted with
// most recently, newest first, up to limit.
func (db *DB) RecentEventsByUser(ctx context.Context, userID int64, limit int) ([]int64, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT event_id
		FROM users_actions
		WHERE user_id = ?
		ORDER BY last_action_date DESC
		LIMIT ?`,
		userID, limit)
	metrics.ObserveDBQuery("select_recent", "users_actions", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events for user %d: %w", userID, err)
	}
	defer rows.Close()

	var events []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan event id: %w", err)
		}
		events = append(events, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recent events for user %d: %w", userID, err)
	}
	return events, nil
}

// UserActionsFor returns the user's engagement rows for the given events.
// Events the user never touched are simply absent from the result.
func (db *DB) UserActionsFor(ctx context.Context, userID int64, eventIDs []int64) ([]models.UserAction, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(eventIDs)+1)
	args = append(args, userID)
	for _, id := range eventIDs {
		args = append(args, id)
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT event_id, user_id, last_action_date, weight
		FROM users_actions
		WHERE user_id = ? AND event_id IN (%s)`,
		placeholders(len(eventIDs))), args...)
	metrics.ObserveDBQuery("select_by_events", "users_actions", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var actions []models.UserAction
	for rows.Next() {
		var a models.UserAction
		if err := rows.Scan(&a.EventID, &a.UserID, &a.LastActionDate, &a.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan user action: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read actions for user %d: %w", userID, err)
	}
	return actions, nil
}

// WeightSums returns, per requested event, the sum of all recorded action
// weights, a lightweight popularity score. Events with no interactions map
// to zero.
func (db *DB) WeightSums(ctx context.Context, eventIDs []int64) (map[int64]float64, error) {
	sums := make(map[int64]float64, len(eventIDs))
	for _, id := range eventIDs {
		sums[id] = 0
	}
	if len(eventIDs) == 0 {
		return sums, nil
	}

	args := make([]any, 0, len(eventIDs))
	for _, id := range eventIDs {
		args = append(args, id)
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT event_id, SUM(weight)
		FROM users_actions
		WHERE event_id IN (%s)
		GROUP BY event_id`,
		placeholders(len(eventIDs))), args...)
	metrics.ObserveDBQuery("weight_sum", "users_actions", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to sum interaction weights: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var sum float64
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan weight sum: %w", err)
		}
		sums[id] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read weight sums: %w", err)
	}
	return sums, nil
}
