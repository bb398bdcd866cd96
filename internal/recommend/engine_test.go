// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

package recommend

import (
	"context"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/eventora/stats/internal/models"
)

// mockStore serves queries from in-memory fixtures, mimicking the store's
// contract: sims are returned in score-descending order and actions exist
// only for touched (user, event) pairs.
type mockStore struct {
	recents map[int64][]int64           // user -> event ids, newest first
	weights map[int64]map[int64]float64 // user -> event -> weight
	sims    []models.EventSimilarity    // full graph
	sums    map[int64]float64           // event -> weight sum
}

func (m *mockStore) RecentEventsByUser(_ context.Context, userID int64, limit int) ([]int64, error) {
	recent := m.recents[userID]
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}

func (m *mockStore) UserActionsFor(_ context.Context, userID int64, eventIDs []int64) ([]models.UserAction, error) {
	var actions []models.UserAction
	for _, id := range eventIDs {
		if w, ok := m.weights[userID][id]; ok {
			actions = append(actions, models.UserAction{
				EventID:        id,
				UserID:         userID,
				Weight:         w,
				LastActionDate: time.Now(),
			})
		}
	}
	return actions, nil
}

func (m *mockStore) SimilaritiesTouching(_ context.Context, eventIDs []int64) ([]models.EventSimilarity, error) {
	wanted := make(map[int64]bool, len(eventIDs))
	for _, id := range eventIDs {
		wanted[id] = true
	}
	var out []models.EventSimilarity
	for _, sim := range m.sims {
		if wanted[sim.EventA] || wanted[sim.EventB] {
			out = append(out, sim)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (m *mockStore) WeightSums(_ context.Context, eventIDs []int64) (map[int64]float64, error) {
	sums := make(map[int64]float64, len(eventIDs))
	for _, id := range eventIDs {
		sums[id] = m.sums[id]
	}
	return sums, nil
}

func sim(a, b int64, score float64) models.EventSimilarity {
	pair := models.NewEventPair(a, b)
	return models.EventSimilarity{EventA: pair.A, EventB: pair.B, Score: score, ActionDate: time.Now()}
}

func assertScores(t *testing.T, got []models.RecommendedEvent, want []models.RecommendedEvent) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i].EventID != want[i].EventID {
			t.Errorf("result[%d].EventID = %d, want %d", i, got[i].EventID, want[i].EventID)
		}
		if math.Abs(got[i].Score-want[i].Score) > 1e-9 {
			t.Errorf("result[%d].Score = %v, want %v", i, got[i].Score, want[i].Score)
		}
	}
}

func TestSimilarEventsFiltersVisited(t *testing.T) {
	store := &mockStore{
		weights: map[int64]map[int64]float64{
			7: {1: 0.4, 3: 1.0},
		},
		sims: []models.EventSimilarity{
			sim(1, 2, 0.9),
			sim(1, 3, 0.8),
			sim(1, 4, 0.7),
		},
	}
	engine := NewEngine(store)

	got, err := engine.SimilarEvents(context.Background(), 1, 7, 5)
	if err != nil {
		t.Fatalf("SimilarEvents failed: %v", err)
	}
	// Event 3 is visited and must be filtered; 2 and 4 come back in score
	// order.
	assertScores(t, got, []models.RecommendedEvent{
		{EventID: 2, Score: 0.9},
		{EventID: 4, Score: 0.7},
	})
}

func TestSimilarEventsHonorsMaxResults(t *testing.T) {
	store := &mockStore{
		weights: map[int64]map[int64]float64{7: {}},
		sims: []models.EventSimilarity{
			sim(1, 2, 0.9),
			sim(1, 4, 0.7),
		},
	}
	engine := NewEngine(store)

	got, err := engine.SimilarEvents(context.Background(), 1, 7, 1)
	if err != nil {
		t.Fatalf("SimilarEvents failed: %v", err)
	}
	assertScores(t, got, []models.RecommendedEvent{{EventID: 2, Score: 0.9}})
}

func TestSimilarEventsNoGraph(t *testing.T) {
	engine := NewEngine(&mockStore{})
	got, err := engine.SimilarEvents(context.Background(), 1, 7, 5)
	if err != nil {
		t.Fatalf("SimilarEvents failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestRecommendationsForUser(t *testing.T) {
	store := &mockStore{
		recents: map[int64][]int64{7: {1, 2}},
		weights: map[int64]map[int64]float64{
			7: {1: 1.0, 2: 0.4},
		},
		sims: []models.EventSimilarity{
			sim(1, 5, 0.9),
			sim(2, 5, 0.5),
			sim(1, 6, 0.4),
		},
	}
	engine := NewEngine(store)

	got, err := engine.RecommendationsForUser(context.Background(), 7, 10)
	if err != nil {
		t.Fatalf("RecommendationsForUser failed: %v", err)
	}
	// Candidate 5 averages over both visited neighbors:
	//   (1.0*0.9 + 0.4*0.5) / (0.9 + 0.5)
	// Candidate 6 has a single neighbor with weight 1.0, so it predicts a
	// perfect score and outranks 5.
	assertScores(t, got, []models.RecommendedEvent{
		{EventID: 6, Score: 1.0},
		{EventID: 5, Score: (1.0*0.9 + 0.4*0.5) / (0.9 + 0.5)},
	})
}

func TestRecommendationsCandidateCap(t *testing.T) {
	store := &mockStore{
		recents: map[int64][]int64{7: {1, 2}},
		weights: map[int64]map[int64]float64{
			7: {1: 1.0, 2: 0.4},
		},
		sims: []models.EventSimilarity{
			sim(1, 5, 0.9),
			sim(2, 5, 0.5),
			sim(1, 6, 0.4),
		},
	}
	engine := NewEngine(store)

	// maxResults=1 caps candidate selection at the strongest edge's
	// unvisited side.
	got, err := engine.RecommendationsForUser(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("RecommendationsForUser failed: %v", err)
	}
	if len(got) != 1 || got[0].EventID != 5 {
		t.Fatalf("got %v, want only event 5", got)
	}
}

func TestRecommendationsNeighborCap(t *testing.T) {
	store := &mockStore{
		recents: map[int64][]int64{7: {1, 2, 3, 4}},
		weights: map[int64]map[int64]float64{
			7: {1: 1.0, 2: 0.4, 3: 0.4, 4: 0.4},
		},
		sims: []models.EventSimilarity{
			sim(1, 9, 0.9),
			sim(2, 9, 0.8),
			sim(3, 9, 0.7),
			sim(4, 9, 0.6),
		},
	}
	engine := NewEngine(store)

	got, err := engine.RecommendationsForUser(context.Background(), 7, 10)
	if err != nil {
		t.Fatalf("RecommendationsForUser failed: %v", err)
	}
	// Only the three strongest visited neighbors contribute; the 0.6 edge
	// is dropped.
	want := (1.0*0.9 + 0.4*0.8 + 0.4*0.7) / (0.9 + 0.8 + 0.7)
	assertScores(t, got, []models.RecommendedEvent{{EventID: 9, Score: want}})
}

func TestRecommendationsNeverIncludeVisited(t *testing.T) {
	store := &mockStore{
		recents: map[int64][]int64{7: {1, 2, 3}},
		weights: map[int64]map[int64]float64{
			7: {1: 1.0, 2: 0.4, 3: 0.8},
		},
		sims: []models.EventSimilarity{
			sim(1, 2, 0.9),
			sim(2, 3, 0.8),
			sim(1, 5, 0.7),
		},
	}
	engine := NewEngine(store)

	got, err := engine.RecommendationsForUser(context.Background(), 7, 10)
	if err != nil {
		t.Fatalf("RecommendationsForUser failed: %v", err)
	}
	for _, rec := range got {
		if _, visited := store.weights[7][rec.EventID]; visited {
			t.Errorf("recommended visited event %d", rec.EventID)
		}
	}
	if len(got) != 1 || got[0].EventID != 5 {
		t.Fatalf("got %v, want only event 5", got)
	}
}

func TestRecommendationsNoHistory(t *testing.T) {
	engine := NewEngine(&mockStore{})
	got, err := engine.RecommendationsForUser(context.Background(), 7, 10)
	if err != nil {
		t.Fatalf("RecommendationsForUser failed: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil for a user with no history", got)
	}
}

func TestInteractionsCount(t *testing.T) {
	store := &mockStore{
		sums: map[int64]float64{1: 2.4, 2: 0.4},
	}
	engine := NewEngine(store)

	got, err := engine.InteractionsCount(context.Background(), []int64{2, 1, 3, 2})
	if err != nil {
		t.Fatalf("InteractionsCount failed: %v", err)
	}
	// Request order is preserved, duplicates collapse, unknown events
	// score zero.
	assertScores(t, got, []models.RecommendedEvent{
		{EventID: 2, Score: 0.4},
		{EventID: 1, Score: 2.4},
		{EventID: 3, Score: 0},
	})
}
