// Package metrics provides Prometheus metrics for the concord engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "concord"
)

var (
	assessmentsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assessments_ingested_total",
		Help:      "Number of assessments accepted into a run.",
	})

	assessmentsExcluded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assessments_excluded_total",
		Help:      "Number of assessments excluded from a run, by stage.",
	}, []string{"stage"})

	citationsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "citations_resolved_total",
		Help:      "Number of citations resolved, by resulting validity.",
	}, []string{"validity"})

	citationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "citation_resolution_seconds",
		Help:      "Latency of a single citation resolution.",
		Buckets:   prometheus.DefBuckets,
	})

	findingClusters = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "finding_clusters_total",
		Help:      "Number of merged finding clusters produced.",
	})

	contestedCategories = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contested_categories_total",
		Help:      "Number of categories flagged as contested.",
	})

	falseConfidenceFlags = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "false_confidence_flags_total",
		Help:      "Number of false-confidence flags emitted.",
	})
)

// RecordAssessmentIngested increments the ingested-assessments counter.
func RecordAssessmentIngested() {
	assessmentsIngested.Inc()
}

// RecordAssessmentExcluded increments the excluded-assessments counter
// for the given pipeline stage (ingest, normalize).
func RecordAssessmentExcluded(stage string) {
	assessmentsExcluded.WithLabelValues(stage).Inc()
}

// RecordCitationResolved increments the resolved-citations counter for
// the given validity class.
func RecordCitationResolved(validity string) {
	citationsResolved.WithLabelValues(validity).Inc()
}

// RecordCitationLatency observes one citation resolution duration in seconds.
func RecordCitationLatency(seconds float64) {
	citationLatency.Observe(seconds)
}

// RecordFindingClusters adds to the cluster counter.
func RecordFindingClusters(n int) {
	findingClusters.Add(float64(n))
}

// RecordContestedCategory increments the contested-categories counter.
func RecordContestedCategory() {
	contestedCategories.Inc()
}

// RecordFalseConfidenceFlag increments the false-confidence counter.
func RecordFalseConfidenceFlag() {
	falseConfidenceFlags.Inc()
}

// Handler returns the HTTP handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
