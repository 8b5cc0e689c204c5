package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatmood_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatmood_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Analysis metrics
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatmood_analyses_total",
			Help: "Analysis runs by outcome",
		},
		[]string{"outcome"}, // "ok", "empty", "invalid_encoding", "classifier_error", "store_error"
	)

	MessagesClassified = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatmood_messages_classified_total",
			Help: "Messages passed through the classifier",
		},
	)

	LabelsAssigned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatmood_labels_assigned_total",
			Help: "Emotion labels assigned to messages",
		},
		[]string{"label"},
	)

	// Classifier metrics
	ClassifierLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatmood_classifier_latency_seconds",
			Help:    "Latency of a single classification call",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatmood_classifier_cache_lookups_total",
			Help: "Classification cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)
)
