// Package metrics exposes Prometheus counters for the ingestion pipeline and
// the reverse-geocoding path.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// IngestTotal counts samples accepted by POST /location.
	IngestTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citylight_ingest_total",
		Help: "Total location samples ingested",
	})

	// CitiesLighted counts false→true lighting transitions.
	CitiesLighted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citylight_cities_lighted_total",
		Help: "Total city visits that became lighted",
	})

	// VisitConflictRetries counts visit upsert transactions retried after
	// write contention.
	VisitConflictRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citylight_visit_conflict_retries_total",
		Help: "Total visit upsert retries due to database contention",
	})

	GeocodeRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citylight_geocode_requests_total",
		Help: "Total reverse geocoding provider calls",
	})

	GeocodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citylight_geocode_failures_total",
		Help: "Total reverse geocoding provider calls that failed or timed out",
	})

	GeocodeCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citylight_geocode_cache_hits_total",
		Help: "Total reverse geocoding cache hits",
	})

	GeocodeCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "citylight_geocode_cache_misses_total",
		Help: "Total reverse geocoding cache misses",
	})

	GeocodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "citylight_geocode_duration_seconds",
		Help:    "Reverse geocoding provider call duration",
		Buckets: prometheus.DefBuckets,
	})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
