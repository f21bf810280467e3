// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	LinesRead       prometheus.Counter
	LinesParsed     prometheus.Counter
	RecordsRejected *prometheus.CounterVec

	// Validation metrics
	RecordsAccepted prometheus.Counter
	RecordsFiltered prometheus.Counter

	// Catalog metrics
	CatalogEntriesFetched prometheus.Gauge
	CatalogFetchErrors    prometheus.Counter
	EnrichmentMatches     prometheus.Counter
	EnrichmentMisses      prometheus.Counter

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  prometheus.Histogram
	ReportsGenerated  prometheus.Counter

	// Database metrics
	DBQueryErrors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
// Call at most once per process; promauto panics on duplicate registration.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "sales_analytics"
	}

	return &Metrics{
		LinesRead: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "lines_read_total",
			Help:      "Total number of raw input lines read",
		}),
		LinesParsed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "lines_parsed_total",
			Help:      "Total number of lines parsed into candidate records",
		}),
		RecordsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "records_rejected_total",
			Help:      "Total number of rejected records by reason",
		}, []string{"reason"}),
		RecordsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "records_accepted_total",
			Help:      "Total number of records that passed all business rules",
		}),
		RecordsFiltered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "records_filtered_total",
			Help:      "Total number of accepted records excluded by the run filter",
		}),
		CatalogEntriesFetched: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "entries_fetched",
			Help:      "Number of catalog entries fetched in the last run",
		}),
		CatalogFetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "fetch_errors_total",
			Help:      "Total number of failed catalog fetches",
		}),
		EnrichmentMatches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "enrichment_matches_total",
			Help:      "Total number of transactions matched to a catalog entry",
		}),
		EnrichmentMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "enrichment_misses_total",
			Help:      "Total number of transactions with no catalog match",
		}),
		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Pipeline run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database errors by backend",
		}, []string{"backend"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
