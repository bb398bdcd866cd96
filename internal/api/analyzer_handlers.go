// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eventora/stats/internal/models"
)

// Query limits for the analyzer endpoints.
const (
	defaultMaxResults = 10
	maxMaxResults     = 100
	maxEventIDs       = 500
)

// Recommender answers recommendation queries. *recommend.Engine satisfies
// it.
type Recommender interface {
	RecommendationsForUser(ctx context.Context, userID int64, maxResults int) ([]models.RecommendedEvent, error)
	SimilarEvents(ctx context.Context, eventID, userID int64, maxResults int) ([]models.RecommendedEvent, error)
	InteractionsCount(ctx context.Context, eventIDs []int64) ([]models.RecommendedEvent, error)
}

// AnalyzerHandlers serves the query endpoints.
type AnalyzerHandlers struct {
	engine Recommender
}

// NewAnalyzerHandlers creates handlers over the given engine.
func NewAnalyzerHandlers(engine Recommender) *AnalyzerHandlers {
	return &AnalyzerHandlers{engine: engine}
}

type recommendationsRequest struct {
	UserID     int64 `validate:"required,gt=0"`
	MaxResults int   `validate:"gt=0,lte=100"`
}

// HandleRecommendations serves GET /api/v1/recommendations.
func (h *AnalyzerHandlers) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := recommendationsRequest{
		UserID:     getInt64Param(r, "userId"),
		MaxResults: getIntParam(r, "maxResults", defaultMaxResults),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondJSON(w, http.StatusBadRequest, &models.APIResponse{
			Status:   "error",
			Metadata: models.Metadata{Timestamp: time.Now()},
			Error:    apiErr,
		})
		return
	}

	results, err := h.engine.RecommendationsForUser(r.Context(), req.UserID, req.MaxResults)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to compute recommendations", err)
		return
	}
	respondSuccess(w, http.StatusOK, emptyAsSlice(results), start)
}

type similarEventsRequest struct {
	EventID    int64 `validate:"required,gt=0"`
	UserID     int64 `validate:"required,gt=0"`
	MaxResults int   `validate:"gt=0,lte=100"`
}

// HandleSimilarEvents serves GET /api/v1/events/{eventId}/similar.
func (h *AnalyzerHandlers) HandleSimilarEvents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_EVENT_ID", "Event id must be an integer", err)
		return
	}

	req := similarEventsRequest{
		EventID:    eventID,
		UserID:     getInt64Param(r, "userId"),
		MaxResults: getIntParam(r, "maxResults", defaultMaxResults),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondJSON(w, http.StatusBadRequest, &models.APIResponse{
			Status:   "error",
			Metadata: models.Metadata{Timestamp: time.Now()},
			Error:    apiErr,
		})
		return
	}

	results, err := h.engine.SimilarEvents(r.Context(), req.EventID, req.UserID, req.MaxResults)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to find similar events", err)
		return
	}
	respondSuccess(w, http.StatusOK, emptyAsSlice(results), start)
}

// HandleInteractionsCount serves GET /api/v1/events/interactions.
func (h *AnalyzerHandlers) HandleInteractionsCount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	eventIDs, err := parseCommaSeparatedInt64s(r.URL.Query().Get("eventIds"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_EVENT_IDS", "eventIds must be comma-separated integers", err)
		return
	}
	if len(eventIDs) == 0 {
		respondError(w, http.StatusBadRequest, "INVALID_EVENT_IDS", "eventIds is required", nil)
		return
	}
	if len(eventIDs) > maxEventIDs {
		respondError(w, http.StatusBadRequest, "INVALID_EVENT_IDS", "Too many event ids requested", nil)
		return
	}

	results, err := h.engine.InteractionsCount(r.Context(), eventIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to count interactions", err)
		return
	}
	respondSuccess(w, http.StatusOK, emptyAsSlice(results), start)
}

// emptyAsSlice keeps empty results serializing as [] rather than null.
func emptyAsSlice(results []models.RecommendedEvent) []models.RecommendedEvent {
	if results == nil {
		return []models.RecommendedEvent{}
	}
	return results
}
