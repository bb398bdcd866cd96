// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eventora/stats/internal/middleware"
)

// Pinger reports readiness of a backing dependency. *database.DB satisfies
// it; the collector router passes nil and is ready whenever it is up.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewCollectorRouter builds the collector's HTTP surface.
func NewCollectorRouter(h *CollectorHandlers, rateLimit int) chi.Router {
	r := baseRouter(rateLimit)
	mountHealth(r, nil)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/user-actions", h.HandleCollectAction)
	})
	return r
}

// NewAnalyzerRouter builds the analyzer's HTTP surface.
func NewAnalyzerRouter(h *AnalyzerHandlers, db Pinger, rateLimit int) chi.Router {
	r := baseRouter(rateLimit)
	mountHealth(r, db)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/recommendations", h.HandleRecommendations)
		r.Get("/events/interactions", h.HandleInteractionsCount)
		r.Get("/events/{eventId}/similar", h.HandleSimilarEvents)
	})
	return r
}

func baseRouter(rateLimit int) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Prometheus)
	r.Use(chimiddleware.Recoverer)
	if rateLimit > 0 {
		r.Use(httprate.LimitByIP(rateLimit, time.Minute))
	}
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// mountHealth wires liveness and readiness probes. Readiness additionally
// pings the store when one is provided.
func mountHealth(r chi.Router, db Pinger) {
	r.Get("/api/v1/health/live", func(w http.ResponseWriter, req *http.Request) {
		respondSuccess(w, http.StatusOK, map[string]string{"status": "up"}, time.Now())
	})
	r.Get("/api/v1/health/ready", func(w http.ResponseWriter, req *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Store is unreachable", err)
				return
			}
		}
		respondSuccess(w, http.StatusOK, map[string]string{"status": "ready"}, time.Now())
	})
}
