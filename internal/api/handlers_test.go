// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/eventora/stats/internal/models"
)

type mockCollector struct {
	collected []models.Interaction
	err       error
}

func (m *mockCollector) CollectAction(_ context.Context, in models.Interaction) error {
	if m.err != nil {
		return m.err
	}
	m.collected = append(m.collected, in)
	return nil
}

type mockRecommender struct {
	results []models.RecommendedEvent
	err     error

	lastUserID     int64
	lastEventID    int64
	lastMaxResults int
	lastEventIDs   []int64
}

func (m *mockRecommender) RecommendationsForUser(_ context.Context, userID int64, maxResults int) ([]models.RecommendedEvent, error) {
	m.lastUserID, m.lastMaxResults = userID, maxResults
	return m.results, m.err
}

func (m *mockRecommender) SimilarEvents(_ context.Context, eventID, userID int64, maxResults int) ([]models.RecommendedEvent, error) {
	m.lastEventID, m.lastUserID, m.lastMaxResults = eventID, userID, maxResults
	return m.results, m.err
}

func (m *mockRecommender) InteractionsCount(_ context.Context, eventIDs []int64) ([]models.RecommendedEvent, error) {
	m.lastEventIDs = eventIDs
	return m.results, m.err
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return resp
}

func TestCollectActionAccepted(t *testing.T) {
	mc := &mockCollector{}
	router := NewCollectorRouter(NewCollectorHandlers(mc), 0)

	body := `{"userId":7,"eventId":42,"actionType":"LIKE","timestamp":"2026-03-01T12:00:00Z"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/user-actions", strings.NewReader(body)))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body: %s", rec.Code, rec.Body.String())
	}
	if len(mc.collected) != 1 {
		t.Fatalf("got %d collected actions, want 1", len(mc.collected))
	}
	in := mc.collected[0]
	if in.UserID != 7 || in.EventID != 42 || in.ActionType != models.ActionLike {
		t.Errorf("collected = %+v", in)
	}
}

func TestCollectActionRejectsUnknownType(t *testing.T) {
	mc := &mockCollector{}
	router := NewCollectorRouter(NewCollectorHandlers(mc), 0)

	body := `{"userId":7,"eventId":42,"actionType":"DISLIKE"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/user-actions", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v, want VALIDATION_ERROR", resp.Error)
	}
	if len(mc.collected) != 0 {
		t.Error("invalid action reached the collector")
	}
}

func TestCollectActionRejectsMalformedJSON(t *testing.T) {
	router := NewCollectorRouter(NewCollectorHandlers(&mockCollector{}), 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/user-actions", strings.NewReader("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); resp.Error == nil || resp.Error.Code != "INVALID_JSON" {
		t.Errorf("error = %+v, want INVALID_JSON", resp.Error)
	}
}

func TestCollectActionPublishFailure(t *testing.T) {
	mc := &mockCollector{err: errors.New("broker down")}
	router := NewCollectorRouter(NewCollectorHandlers(mc), 0)

	body := `{"userId":7,"eventId":42,"actionType":"VIEW"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/user-actions", strings.NewReader(body)))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); resp.Error == nil || resp.Error.Code != "PUBLISH_FAILED" {
		t.Errorf("error = %+v, want PUBLISH_FAILED", resp.Error)
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	mr := &mockRecommender{results: []models.RecommendedEvent{{EventID: 5, Score: 0.9}}}
	router := NewAnalyzerRouter(NewAnalyzerHandlers(mr), nil, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations?userId=7&maxResults=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	if mr.lastUserID != 7 || mr.lastMaxResults != 5 {
		t.Errorf("engine called with user %d, max %d", mr.lastUserID, mr.lastMaxResults)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Status != "success" {
		t.Errorf("status = %q, want success", resp.Status)
	}
}

func TestRecommendationsRequiresUserID(t *testing.T) {
	router := NewAnalyzerRouter(NewAnalyzerHandlers(&mockRecommender{}), nil, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRecommendationsDefaultMaxResults(t *testing.T) {
	mr := &mockRecommender{}
	router := NewAnalyzerRouter(NewAnalyzerHandlers(mr), nil, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations?userId=7", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if mr.lastMaxResults != defaultMaxResults {
		t.Errorf("maxResults = %d, want default %d", mr.lastMaxResults, defaultMaxResults)
	}
	// Empty result sets serialize as [], not null.
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("body = %s, want empty array data", rec.Body.String())
	}
}

func TestSimilarEventsEndpoint(t *testing.T) {
	mr := &mockRecommender{results: []models.RecommendedEvent{{EventID: 2, Score: 0.8}}}
	router := NewAnalyzerRouter(NewAnalyzerHandlers(mr), nil, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events/42/similar?userId=7&maxResults=3", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	if mr.lastEventID != 42 || mr.lastUserID != 7 || mr.lastMaxResults != 3 {
		t.Errorf("engine called with event %d, user %d, max %d",
			mr.lastEventID, mr.lastUserID, mr.lastMaxResults)
	}
}

func TestSimilarEventsRejectsBadEventID(t *testing.T) {
	router := NewAnalyzerRouter(NewAnalyzerHandlers(&mockRecommender{}), nil, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events/abc/similar?userId=7", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestInteractionsCountEndpoint(t *testing.T) {
	mr := &mockRecommender{results: []models.RecommendedEvent{
		{EventID: 1, Score: 2.4},
		{EventID: 2, Score: 0.4},
	}}
	router := NewAnalyzerRouter(NewAnalyzerHandlers(mr), nil, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events/interactions?eventIds=1,2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	if len(mr.lastEventIDs) != 2 || mr.lastEventIDs[0] != 1 || mr.lastEventIDs[1] != 2 {
		t.Errorf("engine called with %v, want [1 2]", mr.lastEventIDs)
	}
}

func TestInteractionsCountRequiresEventIDs(t *testing.T) {
	router := NewAnalyzerRouter(NewAnalyzerHandlers(&mockRecommender{}), nil, 0)

	for _, query := range []string{"", "?eventIds=", "?eventIds=1,x"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events/interactions"+query, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("query %q: status = %d, want 400", query, rec.Code)
		}
	}
}

func TestQueryFailureMapsTo500(t *testing.T) {
	mr := &mockRecommender{err: errors.New("store offline")}
	router := NewAnalyzerRouter(NewAnalyzerHandlers(mr), nil, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations?userId=7", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); resp.Error == nil || resp.Error.Code != "QUERY_FAILED" {
		t.Errorf("error = %+v, want QUERY_FAILED", resp.Error)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := NewAnalyzerRouter(NewAnalyzerHandlers(&mockRecommender{}), nil, 0)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rec.Code)
		}
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("no connection") }

func TestReadinessReportsStoreFailure(t *testing.T) {
	router := NewAnalyzerRouter(NewAnalyzerHandlers(&mockRecommender{}), failingPinger{}, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
