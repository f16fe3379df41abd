// Package metrics provides the centralized Prometheus metrics registry for
// the feature pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ResultsIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "podium_pipeline",
		Name:      "results_ingested_total",
		Help:      "Total number of race results ingested",
	})
	ResultsDuplicateTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "podium_pipeline",
		Name:      "results_duplicate_total",
		Help:      "Total number of duplicate results skipped during ingestion",
	})
	RowsCleanedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "podium_pipeline",
		Name:      "rows_cleaned_total",
		Help:      "Total number of rows produced by the cleaning stage",
	})
	RowsEncodedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "podium_pipeline",
		Name:      "rows_encoded_total",
		Help:      "Total number of rows produced by the encoding stage",
	})
	UnseenCategoriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "podium_pipeline",
		Name:      "unseen_categories_total",
		Help:      "Total number of rows skipped for categories absent from the fitted encoding",
	})
	EncodingFitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "podium_pipeline",
		Name:      "encoding_fits_total",
		Help:      "Total number of label encoding fits performed",
	})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "podium_pipeline",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of data source circuit breaker trips",
	})
)

// Counter vectors
var (
	PipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "podium_pipeline",
		Name:      "runs_total",
		Help:      "Total number of pipeline runs by status",
	}, []string{"status"})
)

// Gauge metrics
var (
	TrainingRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "podium_pipeline",
		Name:      "training_rows",
		Help:      "Row count of the latest training dataset",
	})
	HoldoutRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "podium_pipeline",
		Name:      "holdout_rows",
		Help:      "Row count of the latest held-out dataset",
	})
	EncodingCardinality = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "podium_pipeline",
		Name:      "encoding_cardinality",
		Help:      "Distinct categories per encoded column in the active encoding",
	}, []string{"column"})
)

// Histogram metrics
var (
	PipelineRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "podium_pipeline",
		Name:      "run_duration_seconds",
		Help:      "Duration of pipeline runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
	IngestionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "podium_pipeline",
		Name:      "ingestion_duration_seconds",
		Help:      "Duration of ingestion runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(ResultsIngestedTotal)
		registry.MustRegister(ResultsDuplicateTotal)
		registry.MustRegister(RowsCleanedTotal)
		registry.MustRegister(RowsEncodedTotal)
		registry.MustRegister(UnseenCategoriesTotal)
		registry.MustRegister(EncodingFitsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
		registry.MustRegister(PipelineRunsTotal)

		// Register gauge metrics
		registry.MustRegister(TrainingRows)
		registry.MustRegister(HoldoutRows)
		registry.MustRegister(EncodingCardinality)

		// Register histogram metrics
		registry.MustRegister(PipelineRunDuration)
		registry.MustRegister(IngestionDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordResultIngested records a successfully ingested result.
func RecordResultIngested() {
	ResultsIngestedTotal.Inc()
}

// RecordDuplicateResult records a duplicate result skipped during ingestion.
func RecordDuplicateResult() {
	ResultsDuplicateTotal.Inc()
}

// RecordRowsCleaned adds to the cleaned row counter.
func RecordRowsCleaned(count int) {
	RowsCleanedTotal.Add(float64(count))
}

// RecordRowsEncoded adds to the encoded row counter.
func RecordRowsEncoded(count int) {
	RowsEncodedTotal.Add(float64(count))
}

// RecordUnseenCategories adds to the unseen category skip counter.
func RecordUnseenCategories(count int) {
	UnseenCategoriesTotal.Add(float64(count))
}

// RecordEncodingFit records a label encoding fit and its per-column
// cardinalities.
func RecordEncodingFit(cardinalities map[string]int) {
	EncodingFitsTotal.Inc()
	for column, cardinality := range cardinalities {
		EncodingCardinality.WithLabelValues(column).Set(float64(cardinality))
	}
}

// RecordCircuitBreakerTrip records a data source circuit breaker trip.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// RecordPipelineRun records a completed pipeline run.
// status should be one of: "completed", "failed"
func RecordPipelineRun(status string, durationSeconds float64) {
	PipelineRunsTotal.WithLabelValues(status).Inc()
	PipelineRunDuration.Observe(durationSeconds)
}

// RecordIngestionRun records the duration of an ingestion run.
func RecordIngestionRun(durationSeconds float64) {
	IngestionDuration.Observe(durationSeconds)
}

// UpdateDatasetRows updates the dataset size gauges.
func UpdateDatasetRows(training, holdout int) {
	TrainingRows.Set(float64(training))
	HoldoutRows.Set(float64(holdout))
}
