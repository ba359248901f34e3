// Package metrics provides Prometheus metrics for the related products service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolutionsTotal tracks related products requests by mode and outcome
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "related",
			Name:      "resolutions_total",
			Help:      "Total number of related products resolutions by mode and status",
		},
		[]string{"mode", "status"},
	)

	// ResolutionDuration tracks resolution latency in seconds
	ResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "related",
			Name:      "resolution_duration_seconds",
			Help:      "Duration of related products resolutions in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"mode"},
	)

	// ResolvedProducts tracks how many products a resolution returned
	ResolvedProducts = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "related",
			Name:      "resolved_products",
			Help:      "Number of related products returned per resolution",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		},
		[]string{"mode"},
	)

	// RelationshipWritesTotal tracks curated relationship mutations
	RelationshipWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "relationships",
			Name:      "writes_total",
			Help:      "Total number of relationship writes by operation and status",
		},
		[]string{"operation", "status"},
	)

	// EventsPublishedTotal tracks Kafka publish operations
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of relationship events published by type and status",
		},
		[]string{"type", "status"},
	)

	// EventPublishDuration tracks Kafka publish latency
	EventPublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "events",
			Name:      "publish_duration_seconds",
			Help:      "Duration of relationship event publishes in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"type"},
	)
)

// RecordResolution records a related products resolution
func RecordResolution(mode, status string, products int, durationSeconds float64) {
	ResolutionsTotal.WithLabelValues(mode, status).Inc()
	ResolutionDuration.WithLabelValues(mode).Observe(durationSeconds)
	if status == "success" {
		ResolvedProducts.WithLabelValues(mode).Observe(float64(products))
	}
}

// RecordRelationshipWrite records a Set, Replace or Remove
func RecordRelationshipWrite(operation, status string) {
	RelationshipWritesTotal.WithLabelValues(operation, status).Inc()
}

// RecordEventPublish records a Kafka publish operation
func RecordEventPublish(eventType, status string, durationSeconds float64) {
	EventsPublishedTotal.WithLabelValues(eventType, status).Inc()
	EventPublishDuration.WithLabelValues(eventType).Observe(durationSeconds)
}
