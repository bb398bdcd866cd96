// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

package aggregator

import (
	"math"

	"github.com/eventora/stats/internal/models"
)

// State holds the incremental similarity model.
//
// Not safe for concurrent use. The consumer loop is the sole writer and
// reader, which is exactly the partition-ordering guarantee the action topic
// provides per event.
type State struct {
	// userWeights[event][user] is the strongest weight the user has shown
	// for the event.
	userWeights map[int64]map[int64]float64

	// weightSums[event] is the sum of that event's user weights, the
	// normalizer sqrt term of every score the event participates in.
	weightSums map[int64]float64

	// minWeightSums[pair] is the accumulated co-engagement mass
	// Σ_u min(w_u(A), w_u(B)) for the canonical pair.
	minWeightSums map[models.EventPair]float64
}

// NewState returns an empty model.
func NewState() *State {
	return &State{
		userWeights:   make(map[int64]map[int64]float64),
		weightSums:    make(map[int64]float64),
		minWeightSums: make(map[models.EventPair]float64),
	}
}

// EventCount returns the number of events the model currently tracks.
func (s *State) EventCount() int {
	return len(s.weightSums)
}

// WeightSum returns the current weight sum for an event, zero if untracked.
func (s *State) WeightSum(eventID int64) float64 {
	return s.weightSums[eventID]
}

// Apply folds one interaction into the model and returns the similarity rows
// whose scores changed. The returned rows carry the interaction's timestamp
// as their ActionDate.
//
// An interaction whose weight does not exceed the weight already recorded
// for the same (user, event) pair is a no-op and returns nil.
func (s *State) Apply(in models.Interaction) []models.EventSimilarity {
	if _, tracked := s.userWeights[in.EventID]; !tracked {
		return s.applyNewEvent(in)
	}
	return s.applyKnownEvent(in)
}

// applyNewEvent introduces an event the model has never seen. Its weight
// vector is a single entry for this user, so the only pairs that can gain
// mass are those with events the same user already touched.
func (s *State) applyNewEvent(in models.Interaction) []models.EventSimilarity {
	w := in.ActionType.Weight()

	var updates []models.EventSimilarity
	for other, otherSum := range s.weightSums {
		m := math.Min(s.userWeights[other][in.UserID], w)
		if m <= 0 {
			continue
		}
		pair := models.NewEventPair(in.EventID, other)
		s.minWeightSums[pair] = m
		updates = append(updates, models.EventSimilarity{
			EventA:     pair.A,
			EventB:     pair.B,
			Score:      m / math.Sqrt(otherSum*w),
			ActionDate: in.Timestamp,
		})
	}

	s.userWeights[in.EventID] = map[int64]float64{in.UserID: w}
	s.weightSums[in.EventID] = w
	return updates
}

// applyKnownEvent upgrades the user's weight on a tracked event. The delta
// between the new and old min against each co-touched event is added to the
// pair's mass, and both sides' fresh weight sums renormalize the score.
func (s *State) applyKnownEvent(in models.Interaction) []models.EventSimilarity {
	weights := s.userWeights[in.EventID]
	old := weights[in.UserID]
	w := in.ActionType.Weight()
	if w <= old {
		return nil
	}

	weights[in.UserID] = w
	s.weightSums[in.EventID] += w - old

	var updates []models.EventSimilarity
	for other, otherWeights := range s.userWeights {
		if other == in.EventID {
			continue
		}
		otherWeight := otherWeights[in.UserID]
		if otherWeight <= 0 {
			continue
		}
		pair := models.NewEventPair(in.EventID, other)
		s.minWeightSums[pair] += math.Min(w, otherWeight) - math.Min(old, otherWeight)
		updates = append(updates, models.EventSimilarity{
			EventA:     pair.A,
			EventB:     pair.B,
			Score:      s.minWeightSums[pair] / math.Sqrt(s.weightSums[pair.A]*s.weightSums[pair.B]),
			ActionDate: in.Timestamp,
		})
	}
	return updates
}
