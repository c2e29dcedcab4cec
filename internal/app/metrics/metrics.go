package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "booklovin",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booklovin",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "booklovin",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	likesRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "booklovin",
			Subsystem: "feed",
			Name:      "likes_recorded_total",
			Help:      "Total number of like operations accepted.",
		},
	)

	postsPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "booklovin",
			Subsystem: "feed",
			Name:      "posts_published_total",
			Help:      "Total number of posts published.",
		},
	)

	journalEntries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "booklovin",
			Subsystem: "journal",
			Name:      "entries_written_total",
			Help:      "Total number of journal entries written.",
		},
	)

	streakAdvances = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booklovin",
			Subsystem: "journal",
			Name:      "streak_transitions_total",
			Help:      "Streak state transitions by outcome.",
		},
		[]string{"outcome"},
	)

	lettersDue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "booklovin",
			Subsystem: "letters",
			Name:      "due_scheduled",
			Help:      "Scheduled letters whose target date has passed, per the last sweep.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		likesRecorded,
		postsPublished,
		journalEntries,
		streakAdvances,
		lettersDue,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
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
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordLike counts a newly recorded like.
func RecordLike() { likesRecorded.Inc() }

// RecordPostPublished counts a newly published post.
func RecordPostPublished() { postsPublished.Inc() }

// RecordJournalEntry counts a newly written journal entry.
func RecordJournalEntry() { journalEntries.Inc() }

// RecordStreakTransition counts a streak state change by outcome
// ("started", "continued", "broken" or "unchanged").
func RecordStreakTransition(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	streakAdvances.WithLabelValues(outcome).Inc()
}

// SetLettersDue publishes the due-letter count from the latest sweep.
func SetLettersDue(n int) { lettersDue.Set(float64(n)) }

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses ID segments so metric labels stay low-cardinality.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) == 1 {
		return "/" + parts[0]
	}
	return "/" + parts[0] + "/:id"
}
