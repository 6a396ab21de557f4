package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	chatRequestsTotal        *prometheus.CounterVec
	chatOutcomeTotal         *prometheus.CounterVec
	chatRetrievalHitTotal    *prometheus.CounterVec
	chatNoContextTotal       *prometheus.CounterVec
	chatSources              *prometheus.HistogramVec
	chatDuration             *prometheus.HistogramVec
	translationDegradedTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srb",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "srb",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "srb",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srb",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total completed chat requests.",
		},
		[]string{"service"},
	)
	chatOutcomeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srb",
			Subsystem: "chat",
			Name:      "outcome_total",
			Help:      "Total completed chat requests by outcome.",
		},
		[]string{"service", "outcome"},
	)
	chatRetrievalHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srb",
			Subsystem: "chat",
			Name:      "retrieval_hit_total",
			Help:      "Total chat requests answered with at least one source.",
		},
		[]string{"service"},
	)
	chatNoContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srb",
			Subsystem: "chat",
			Name:      "no_context_total",
			Help:      "Total chat requests answered without sources.",
		},
		[]string{"service"},
	)
	chatSources := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "srb",
			Subsystem: "chat",
			Name:      "sources",
			Help:      "Distribution of cited sources per chat request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		},
		[]string{"service"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "srb",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "Chat pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	translationDegradedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srb",
			Subsystem: "chat",
			Name:      "translation_degraded_total",
			Help:      "Total translation calls that degraded to the original text.",
		},
		[]string{"service", "direction"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatRequestsTotal,
		chatOutcomeTotal,
		chatRetrievalHitTotal,
		chatNoContextTotal,
		chatSources,
		chatDuration,
		translationDegradedTotal,
	)

	return &HTTPServerMetrics{
		registry:                 registry,
		requestTotal:             requestTotal,
		requestDuration:          requestDuration,
		requestInFlight:          requestInFlight,
		chatRequestsTotal:        chatRequestsTotal,
		chatOutcomeTotal:         chatOutcomeTotal,
		chatRetrievalHitTotal:    chatRetrievalHitTotal,
		chatNoContextTotal:       chatNoContextTotal,
		chatSources:              chatSources,
		chatDuration:             chatDuration,
		translationDegradedTotal: translationDegradedTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	case strings.HasPrefix(path, "/v1/bots/"):
		return "/v1/bots/{bot_id}"
	default:
		return path
	}
}

// RecordChatObservation records one completed chat request. Outcome is one
// of answered, fallback, retrieval_error, generation_error.
func (m *HTTPServerMetrics) RecordChatObservation(service, outcome string, sourceCount int, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.chatRequestsTotal.WithLabelValues(service).Inc()
	m.chatOutcomeTotal.WithLabelValues(service, outcome).Inc()
	m.chatSources.WithLabelValues(service).Observe(float64(sourceCount))
	m.chatDuration.WithLabelValues(service).Observe(duration.Seconds())

	if sourceCount > 0 {
		m.chatRetrievalHitTotal.WithLabelValues(service).Inc()
		return
	}
	m.chatNoContextTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordTranslationDegraded(service, direction string) {
	if direction == "" {
		direction = "unknown"
	}
	m.translationDegradedTotal.WithLabelValues(service, direction).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
