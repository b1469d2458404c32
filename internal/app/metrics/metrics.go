// Package metrics exposes Prometheus collectors for the tipping platform.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tipping_platform",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tipping_platform",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tipping_platform",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	tipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tipping_platform",
			Subsystem: "tips",
			Name:      "settled_total",
			Help:      "Total number of tip attempts by asset and outcome.",
		},
		[]string{"asset", "outcome"},
	)

	tipVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tipping_platform",
			Subsystem: "tips",
			Name:      "gross_volume_minor_units",
			Help:      "Gross tipped volume in minor units, by asset.",
		},
		[]string{"asset"},
	)

	feesCollected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tipping_platform",
			Subsystem: "tips",
			Name:      "fees_collected_minor_units",
			Help:      "Platform fees collected in minor units, by asset.",
		},
		[]string{"asset"},
	)

	rewardPoints = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tipping_platform",
			Subsystem: "rewards",
			Name:      "points_granted_total",
			Help:      "Reward points granted, both accrued and administrative.",
		},
	)

	identityRegistrations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tipping_platform",
			Subsystem: "identity",
			Name:      "registrations_total",
			Help:      "Successful username registrations.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		tipsTotal,
		tipVolume,
		feesCollected,
		rewardPoints,
		identityRegistrations,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordTip records the outcome of a tip attempt.
func RecordTip(asset, outcome string, gross, fee uint64) {
	tipsTotal.WithLabelValues(asset, outcome).Inc()
	if outcome == "accepted" {
		tipVolume.WithLabelValues(asset).Add(float64(gross))
		feesCollected.WithLabelValues(asset).Add(float64(fee))
	}
}

// RecordRewardPoints records granted reward points.
func RecordRewardPoints(points uint64) {
	rewardPoints.Add(float64(points))
}

// RecordIdentityRegistration records a successful username registration.
func RecordIdentityRegistration() {
	identityRegistrations.Inc()
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if template, err := route.GetPathTemplate(); err == nil {
				path = template
			}
		}
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
