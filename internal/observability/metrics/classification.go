package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClassificationMetrics implements ports.ClassificationRecorder.
type ClassificationMetrics struct {
	service string

	classificationTotal    *prometheus.CounterVec
	classificationDuration *prometheus.HistogramVec
	confidence             *prometheus.HistogramVec
	batchItemsTotal        *prometheus.CounterVec
}

func NewClassificationMetrics(service string, reg prometheus.Registerer) *ClassificationMetrics {
	classificationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classification_total",
			Help:      "Total classified documents by label.",
		},
		[]string{"service", "label"},
	)
	classificationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classification_duration_seconds",
			Help:      "Extraction plus classification duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"service"},
	)
	confidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classification_confidence",
			Help:      "Winning cosine similarity per classified document.",
			Buckets:   []float64{-0.5, 0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
		[]string{"service"},
	)
	batchItemsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Total batch items by status.",
		},
		[]string{"service", "status"},
	)

	reg.MustRegister(classificationTotal, classificationDuration, confidence, batchItemsTotal)

	return &ClassificationMetrics{
		service:                service,
		classificationTotal:    classificationTotal,
		classificationDuration: classificationDuration,
		confidence:             confidence,
		batchItemsTotal:        batchItemsTotal,
	}
}

func (m *ClassificationMetrics) ObserveClassification(label string, confidence float64, duration time.Duration) {
	if label == "" {
		label = "unknown"
	}
	m.classificationTotal.WithLabelValues(m.service, label).Inc()
	m.classificationDuration.WithLabelValues(m.service).Observe(duration.Seconds())
	m.confidence.WithLabelValues(m.service).Observe(confidence)
}

func (m *ClassificationMetrics) ObserveBatchItem(failed bool) {
	status := "success"
	if failed {
		status = "error"
	}
	m.batchItemsTotal.WithLabelValues(m.service, status).Inc()
}
