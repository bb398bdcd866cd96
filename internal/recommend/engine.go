// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

// Package recommend is the read side of the stats pipeline: it turns the
// persisted engagement rows and the similarity graph into ranked
// recommendations, similar-event lists, and popularity scores.
//
// All scoring happens at query time from at most a handful of store reads;
// nothing is precomputed or cached here.
package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/eventora/stats/internal/models"
)

// Query limits. Recommendations look back over a bounded window of the
// user's history, and each candidate's predicted score averages over a
// bounded set of its strongest visited neighbors.
const (
	MaxRecentEvents = 20
	MaxNeighbors    = 3
)

// Store is the persisted state the engine reads. *database.DB satisfies it.
type Store interface {
	// RecentEventsByUser returns the user's most recently acted-on event
	// ids, newest first, up to limit.
	RecentEventsByUser(ctx context.Context, userID int64, limit int) ([]int64, error)

	// UserActionsFor returns the user's engagement rows for the given
	// events; untouched events are absent.
	UserActionsFor(ctx context.Context, userID int64, eventIDs []int64) ([]models.UserAction, error)

	// SimilaritiesTouching returns all similarity rows with at least one
	// side among the given events, ordered by score descending.
	SimilaritiesTouching(ctx context.Context, eventIDs []int64) ([]models.EventSimilarity, error)

	// WeightSums returns the total engagement weight per event, zero for
	// events with no interactions.
	WeightSums(ctx context.Context, eventIDs []int64) (map[int64]float64, error)
}

// Engine answers recommendation queries against a Store.
type Engine struct {
	store Store
}

// NewEngine creates a query engine over the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// RecommendationsForUser predicts which unvisited events the user will
// engage with, based on their recent history and the similarity graph.
//
// Candidates are the unvisited sides of similarity edges touching the
// user's recent visits, taken in score order. Each candidate's predicted
// score is a similarity-weighted average of the user's own weights on up to
// MaxNeighbors of the candidate's strongest visited neighbors.
func (e *Engine) RecommendationsForUser(ctx context.Context, userID int64, maxResults int) ([]models.RecommendedEvent, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	recent, err := e.store.RecentEventsByUser(ctx, userID, MaxRecentEvents)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return nil, nil
	}

	neighbors, err := e.store.SimilaritiesTouching(ctx, recent)
	if err != nil {
		return nil, err
	}
	unvisited, err := e.unvisitedEvents(ctx, userID, neighbors)
	if err != nil {
		return nil, err
	}

	// Unvisited sides of the highest-scoring edges become candidates.
	candidates := make(map[int64]bool, maxResults)
	for _, sim := range neighbors {
		if len(candidates) == maxResults {
			break
		}
		if unvisited[sim.EventA] {
			candidates[sim.EventA] = true
			continue
		}
		if unvisited[sim.EventB] {
			candidates[sim.EventB] = true
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	candidateIDs := make([]int64, 0, len(candidates))
	for id := range candidates {
		candidateIDs = append(candidateIDs, id)
	}
	candidateSims, err := e.store.SimilaritiesTouching(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}
	visitedWeights, err := e.weightsByEvent(ctx, userID, candidateSims)
	if err != nil {
		return nil, err
	}

	// For each candidate keep its strongest visited neighbors, first-come
	// in the pre-sorted scan. The global cap bounds the scan once every
	// candidate's neighbor list is full.
	type neighbor struct {
		eventID int64
		score   float64
	}
	kept := make(map[int64][]neighbor, len(candidates))
	maxKept := len(candidates) * MaxNeighbors
	total := 0
	for _, sim := range candidateSims {
		if total == maxKept {
			break
		}
		var candidate, visited int64
		switch {
		case candidates[sim.EventA]:
			candidate, visited = sim.EventA, sim.EventB
		case candidates[sim.EventB]:
			candidate, visited = sim.EventB, sim.EventA
		default:
			continue
		}
		if _, ok := visitedWeights[visited]; !ok {
			continue
		}
		if len(kept[candidate]) == MaxNeighbors {
			continue
		}
		kept[candidate] = append(kept[candidate], neighbor{eventID: visited, score: sim.Score})
		total++
	}

	results := make([]models.RecommendedEvent, 0, len(kept))
	for candidate, neighbors := range kept {
		var weighted, scoreSum float64
		for _, n := range neighbors {
			weighted += visitedWeights[n.eventID] * n.score
			scoreSum += n.score
		}
		// A zero similarity sum carries no signal to average over.
		if scoreSum <= 0 {
			continue
		}
		results = append(results, models.RecommendedEvent{
			EventID: candidate,
			Score:   weighted / scoreSum,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].EventID < results[j].EventID
	})
	return results, nil
}

// SimilarEvents returns up to maxResults events similar to the given event
// that the user has not interacted with, strongest similarity first.
func (e *Engine) SimilarEvents(ctx context.Context, eventID, userID int64, maxResults int) ([]models.RecommendedEvent, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	sims, err := e.store.SimilaritiesTouching(ctx, []int64{eventID})
	if err != nil {
		return nil, err
	}
	unvisited, err := e.unvisitedEvents(ctx, userID, sims)
	if err != nil {
		return nil, err
	}

	results := make([]models.RecommendedEvent, 0, maxResults)
	for _, sim := range sims {
		other := sim.Pair().Other(eventID)
		if !unvisited[other] {
			continue
		}
		results = append(results, models.RecommendedEvent{EventID: other, Score: sim.Score})
		if len(results) == maxResults {
			break
		}
	}
	return results, nil
}

// InteractionsCount returns the total engagement weight per requested event,
// in the order requested. Unknown events score zero.
func (e *Engine) InteractionsCount(ctx context.Context, eventIDs []int64) ([]models.RecommendedEvent, error) {
	sums, err := e.store.WeightSums(ctx, eventIDs)
	if err != nil {
		return nil, err
	}

	results := make([]models.RecommendedEvent, 0, len(eventIDs))
	seen := make(map[int64]bool, len(eventIDs))
	for _, id := range eventIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		results = append(results, models.RecommendedEvent{EventID: id, Score: sums[id]})
	}
	return results, nil
}

// unvisitedEvents returns the set of event ids appearing in sims that the
// user has no engagement row for.
func (e *Engine) unvisitedEvents(ctx context.Context, userID int64, sims []models.EventSimilarity) (map[int64]bool, error) {
	ids := eventIDsOf(sims)
	actions, err := e.store.UserActionsFor(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve visited events for user %d: %w", userID, err)
	}

	unvisited := make(map[int64]bool, len(ids))
	for _, id := range ids {
		unvisited[id] = true
	}
	for _, a := range actions {
		delete(unvisited, a.EventID)
	}
	return unvisited, nil
}

// weightsByEvent returns the user's weight for every event in sims they
// have interacted with.
func (e *Engine) weightsByEvent(ctx context.Context, userID int64, sims []models.EventSimilarity) (map[int64]float64, error) {
	actions, err := e.store.UserActionsFor(ctx, userID, eventIDsOf(sims))
	if err != nil {
		return nil, fmt.Errorf("failed to load weights for user %d: %w", userID, err)
	}
	weights := make(map[int64]float64, len(actions))
	for _, a := range actions {
		weights[a.EventID] = a.Weight
	}
	return weights, nil
}

// eventIDsOf collects the distinct event ids on either side of sims.
func eventIDsOf(sims []models.EventSimilarity) []int64 {
	seen := make(map[int64]bool, 2*len(sims))
	ids := make([]int64, 0, 2*len(sims))
	for _, sim := range sims {
		for _, id := range []int64{sim.EventA, sim.EventB} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}
