package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/legalarch/docai/internal/observability/metrics"
)

const requestIDHeader = "X-Request-ID"

// Wrap applies the standard middleware stack: request ID, access logging,
// metrics and an optional global rate limit.
func Wrap(handler http.Handler, logger *slog.Logger, m *metrics.ServiceMetrics, limitRPS float64, burst int) http.Handler {
	if limitRPS > 0 {
		handler = rateLimit(handler, limitRPS, burst)
	}
	if m != nil {
		handler = m.Middleware(handler)
	}
	handler = accessLog(handler, logger)
	return requestID(handler)
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func accessLog(next http.Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"request_id", w.Header().Get(requestIDHeader),
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
		)
	})
}

func rateLimit(next http.Handler, rps float64, burst int) http.Handler {
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
