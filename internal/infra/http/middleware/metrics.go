package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	funnelEmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_emails_sent_total",
			Help: "Funnel phase emails by delivery outcome",
		},
		[]string{"status"},
	)

	conferenceEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conference_events_total",
			Help: "Conference status callbacks received, by normalized event",
		},
		[]string{"event"},
	)

	documentsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_generated_total",
			Help: "Invoices and letters rendered to pdf",
		},
		[]string{"kind"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps ids out of metric labels.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Recorder exposes the business counters to the use cases.
type Recorder struct{}

var _ usecase.EventRecorder = Recorder{}

func (Recorder) FunnelEmail(status string) {
	funnelEmailsSent.WithLabelValues(status).Inc()
}

func (Recorder) ConferenceEvent(event string) {
	conferenceEvents.WithLabelValues(event).Inc()
}

func (Recorder) DocumentGenerated(kind string) {
	documentsGenerated.WithLabelValues(kind).Inc()
}
