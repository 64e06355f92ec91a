// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saas_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saas_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	Queries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saas_queries_total",
			Help: "Natural-language questions processed, by outcome",
		},
		[]string{"outcome"},
	)

	QueryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saas_query_failures_total",
			Help: "Failed requests by error kind",
		},
		[]string{"kind"},
	)

	QueryRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "saas_query_result_rows",
			Help:    "Rows returned by generated SQL",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		},
	)

	ModelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saas_model_call_duration_seconds",
			Help:    "Duration of language model calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"stage"},
	)

	SQLCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saas_sql_cache_lookups_total",
			Help: "Question to SQL cache lookups by result",
		},
		[]string{"result"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saas_store_errors_total",
			Help: "Store errors classified as busy or locked",
		},
		[]string{"kind"},
	)

	SampleRowsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saas_sample_rows_generated_total",
			Help: "Synthetic rows inserted by the sample data generator",
		},
		[]string{"table"},
	)
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
