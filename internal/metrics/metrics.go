package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Enrichment kinds
const (
	KindReplies  = "replies"
	KindHasLiked = "has_liked"
)

var (
	// EnrichmentFailures counts per-message enrichment lookups that failed and were degraded.
	EnrichmentFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guestbook_enrichment_failures_total",
			Help: "Per-message enrichment lookups that failed and were replaced by defaults.",
		},
		[]string{"kind"},
	)

	// ChangeEvents counts change events by table, kind and outcome (published, publish_failed, dispatched).
	ChangeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guestbook_change_events_total",
			Help: "Change events handled, by table, event and outcome.",
		},
		[]string{"table", "event", "outcome"},
	)

	// UploadBytes counts attachment bytes stored.
	UploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "guestbook_upload_bytes_total",
			Help: "Total attachment bytes uploaded to blob storage.",
		},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "guestbook_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(EnrichmentFailures)
	prometheus.MustRegister(ChangeEvents)
	prometheus.MustRegister(UploadBytes)
	prometheus.MustRegister(requestDuration)
}

// Instrument records request latency keyed by the matched chi route pattern,
// so /messages/{id} is one series regardless of id.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
