// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/eventora/stats/internal/models"
)

// ActionCollector accepts validated interactions. *collector.Collector
// satisfies it.
type ActionCollector interface {
	CollectAction(ctx context.Context, in models.Interaction) error
}

// CollectorHandlers serves the ingress endpoint.
type CollectorHandlers struct {
	collector ActionCollector
}

// NewCollectorHandlers creates handlers over the given collector.
func NewCollectorHandlers(c ActionCollector) *CollectorHandlers {
	return &CollectorHandlers{collector: c}
}

// CollectActionRequest is the ingress payload.
type CollectActionRequest struct {
	UserID     int64     `json:"userId" validate:"required,gt=0"`
	EventID    int64     `json:"eventId" validate:"required,gt=0"`
	ActionType string    `json:"actionType" validate:"required,oneof=VIEW REGISTER LIKE"`
	Timestamp  time.Time `json:"timestamp"`
}

// HandleCollectAction accepts POST /api/v1/user-actions.
//
// An omitted timestamp defaults to the server's receive time. A publish
// failure maps to 502: the broker is an upstream dependency and the caller
// owns the retry.
func (h *CollectorHandlers) HandleCollectAction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CollectActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondJSON(w, http.StatusBadRequest, &models.APIResponse{
			Status:   "error",
			Metadata: models.Metadata{Timestamp: time.Now()},
			Error:    apiErr,
		})
		return
	}

	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now().UTC()
	}

	in := models.Interaction{
		UserID:     req.UserID,
		EventID:    req.EventID,
		ActionType: models.ActionType(req.ActionType),
		Timestamp:  req.Timestamp,
	}
	if err := h.collector.CollectAction(r.Context(), in); err != nil {
		respondError(w, http.StatusBadGateway, "PUBLISH_FAILED", "Failed to publish action", err)
		return
	}

	respondSuccess(w, http.StatusAccepted, map[string]interface{}{
		"userId":  in.UserID,
		"eventId": in.EventID,
	}, start)
}
