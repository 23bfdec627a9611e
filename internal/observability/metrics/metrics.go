// Package metrics exposes per-service Prometheus registries for the HTTP
// surface and the document pipeline.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServiceMetrics is one service's registry: HTTP server metrics plus the
// document-pipeline counters. The service name rides along as a constant
// label on every series.
type ServiceMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	extractionTotal    *prometheus.CounterVec
	ocrPagesTotal      *prometheus.CounterVec
	generationAttempts *prometheus.CounterVec
	chatDuration       *prometheus.HistogramVec
}

func NewServiceMetrics(service string) *ServiceMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "docai",
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Total HTTP requests processed.",
			ConstLabels: constLabels,
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "docai",
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "docai",
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: constLabels,
		},
	)
	extractionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "docai",
			Subsystem:   "extraction",
			Name:        "documents_total",
			Help:        "Total extracted documents by format and method.",
			ConstLabels: constLabels,
		},
		[]string{"format", "method", "status"},
	)
	ocrPagesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "docai",
			Subsystem:   "ocr",
			Name:        "pages_total",
			Help:        "Total OCR pages by engine and detected page class.",
			ConstLabels: constLabels,
		},
		[]string{"engine", "class"},
	)
	generationAttempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "docai",
			Subsystem:   "generation",
			Name:        "attempts_total",
			Help:        "Generation attempts by backend, field and verdict.",
			ConstLabels: constLabels,
		},
		[]string{"backend", "field", "verdict"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "docai",
			Subsystem:   "chat",
			Name:        "generation_duration_seconds",
			Help:        "Chat generation duration in seconds by outcome.",
			Buckets:     []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 180},
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		extractionTotal,
		ocrPagesTotal,
		generationAttempts,
		chatDuration,
	)

	return &ServiceMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		extractionTotal:    extractionTotal,
		ocrPagesTotal:      ocrPagesTotal,
		generationAttempts: generationAttempts,
		chatDuration:       chatDuration,
	}
}

func (m *ServiceMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ServiceMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			r.Method,
			normalizePath(r.URL.Path),
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(r.Method, normalizePath(r.URL.Path)).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case len(path) > len("/conversations/") && path[:len("/conversations/")] == "/conversations/":
		return "/conversations/{conversation_id}"
	default:
		return path
	}
}

func (m *ServiceMetrics) RecordExtraction(format, method, status string) {
	m.extractionTotal.WithLabelValues(format, method, status).Inc()
}

func (m *ServiceMetrics) RecordOCRPage(engine, class string) {
	if engine == "" {
		engine = "none"
	}
	m.ocrPagesTotal.WithLabelValues(engine, class).Inc()
}

func (m *ServiceMetrics) RecordGenerationAttempt(backend string, field, verdict string) {
	m.generationAttempts.WithLabelValues(backend, field, verdict).Inc()
}

func (m *ServiceMetrics) RecordChatGeneration(outcome string, duration time.Duration) {
	m.chatDuration.WithLabelValues(outcome).Observe(duration.Seconds())
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
