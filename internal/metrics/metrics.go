// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

// Package metrics provides Prometheus instrumentation for the stats
// pipeline: Kafka consume/produce throughput, decode failures, commit
// errors, DuckDB query latency, and HTTP endpoint metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Kafka metrics
	KafkaRecordsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_records_consumed_total",
			Help: "Total number of Kafka records consumed",
		},
		[]string{"topic", "group"},
	)

	KafkaRecordsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_records_published_total",
			Help: "Total number of Kafka records published",
		},
		[]string{"topic"},
	)

	KafkaPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_publish_errors_total",
			Help: "Total number of failed Kafka publishes",
		},
		[]string{"topic"},
	)

	KafkaDecodeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_decode_failures_total",
			Help: "Total number of records skipped due to deserialization failures",
		},
		[]string{"topic", "group"},
	)

	KafkaCommitErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_commit_errors_total",
			Help: "Total number of failed offset commits",
		},
		[]string{"group"},
	)

	// Aggregator metrics
	AggregatorSimilarityUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aggregator_similarity_updates_total",
			Help: "Total number of pairwise similarity updates emitted",
		},
	)

	AggregatorTrackedEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aggregator_tracked_events",
			Help: "Number of events with in-memory weight vectors",
		},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// ObserveDBQuery records a database query duration and outcome.
func ObserveDBQuery(operation, table string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// ObserveAPIRequest records an API request duration and status code.
func ObserveAPIRequest(method, endpoint string, status int, start time.Time) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
}
