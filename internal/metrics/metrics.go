package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "servicehours"

const (
	SourceCache     = "cache"
	SourceGenerated = "generated"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	grpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "gRPC calls by method and status code.",
		},
		[]string{"method", "code"},
	)

	slotRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_requests_total",
			Help:      "Slot list lookups by source.",
		},
		[]string{"source"},
	)

	resolutionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "window_resolution_failures_total",
			Help:      "Service window lookups that failed and produced an empty slot list.",
		},
	)

	slotsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "slots_returned",
			Help:      "Number of slots returned per lookup.",
			Buckets:   []float64{0, 1, 5, 10, 20, 40, 60, 96},
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, grpcRequests, slotRequests, resolutionFailures, slotsReturned)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncGRPC(method, code string) {
	grpcRequests.WithLabelValues(method, code).Inc()
}

// ObserveSlots records one slot lookup served from source.
func ObserveSlots(source string, count int) {
	slotRequests.WithLabelValues(source).Inc()
	slotsReturned.Observe(float64(count))
}

func IncResolutionFailure() {
	resolutionFailures.Inc()
}
