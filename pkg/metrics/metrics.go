package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Process-wide observability state. Counters live here so the store
// and enrichment code stay testable without a metrics collaborator;
// handlers increment on successful completion of an operation.
var (
	RequestCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
	)

	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_latency_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	UptimeGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Uptime of the application in seconds",
		},
	)
)

var startTime = time.Now()

// RefreshUptime sets the uptime gauge from the recorded process start
// time. Called on every scrape so the gauge is current without a
// background ticker.
func RefreshUptime() {
	UptimeGauge.Set(float64(int(time.Since(startTime).Seconds())))
}

// Handler returns the prometheus exposition handler, refreshing the
// uptime gauge first.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RefreshUptime()
		promhttp.Handler().ServeHTTP(w, r)
	})
}

// Serve exposes /metrics on its own port, separate from the API
// listener, mirroring the standalone exposition server the service
// has always run.
func Serve(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	log.Printf("[Metrics] Listening on port %s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Printf("[Metrics] Server error: %v", err)
	}
}
