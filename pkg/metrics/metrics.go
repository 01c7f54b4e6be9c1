// Package metrics exposes the Prometheus collectors for scoring activity.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes
const (
	ResultAccepted     = "accepted"
	ResultLocked       = "locked"
	ResultUnauthorized = "unauthorized"
	ResultInvalid      = "invalid"
	ResultError        = "error"
)

// Recorder holds the collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	entriesSubmitted   *prometheus.CounterVec
	pointsAwarded      *prometheus.CounterVec
	submitDuration     prometheus.Histogram
	recalculatedEntry  prometheus.Counter
	recalcFailures     prometheus.Counter
	recalcDuration     prometheus.Histogram
	httpRequests       *prometheus.CounterVec
	rateLimitedRequest prometheus.Counter
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// Default returns the recorder registered with the global Prometheus registry
func Default() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = New(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// New builds a recorder and registers its collectors with reg
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		entriesSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dailygrit",
			Subsystem: "entries",
			Name:      "submitted_total",
			Help:      "Daily entry submissions by outcome.",
		}, []string{"result"}),
		pointsAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dailygrit",
			Subsystem: "entries",
			Name:      "points_awarded_total",
			Help:      "Points written onto entries by kind (base or bonus).",
		}, []string{"kind"}),
		submitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dailygrit",
			Subsystem: "entries",
			Name:      "submit_duration_seconds",
			Help:      "Time spent scoring and persisting one submission.",
			Buckets:   prometheus.DefBuckets,
		}),
		recalculatedEntry: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dailygrit",
			Subsystem: "recalculation",
			Name:      "entries_total",
			Help:      "Entries rescored after a scoring configuration change.",
		}),
		recalcFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dailygrit",
			Subsystem: "recalculation",
			Name:      "participant_failures_total",
			Help:      "Participants whose recalculation failed and was skipped.",
		}),
		recalcDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dailygrit",
			Subsystem: "recalculation",
			Name:      "duration_seconds",
			Help:      "Wall time of a whole challenge recalculation.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dailygrit",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		rateLimitedRequest: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dailygrit",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-identity rate limiter.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			r.entriesSubmitted,
			r.pointsAwarded,
			r.submitDuration,
			r.recalculatedEntry,
			r.recalcFailures,
			r.recalcDuration,
			r.httpRequests,
			r.rateLimitedRequest,
		)
	}
	return r
}

// EntrySubmitted counts one submission attempt and its latency
func (r *Recorder) EntrySubmitted(result string, started time.Time) {
	if r == nil {
		return
	}
	r.entriesSubmitted.WithLabelValues(result).Inc()
	r.submitDuration.Observe(time.Since(started).Seconds())
}

// PointsAwarded adds freshly written points
func (r *Recorder) PointsAwarded(base, bonus int) {
	if r == nil {
		return
	}
	if base > 0 {
		r.pointsAwarded.WithLabelValues("base").Add(float64(base))
	}
	if bonus > 0 {
		r.pointsAwarded.WithLabelValues("bonus").Add(float64(bonus))
	}
}

// Recalculated records the outcome of one challenge recalculation
func (r *Recorder) Recalculated(entries, failedParticipants int, started time.Time) {
	if r == nil {
		return
	}
	r.recalculatedEntry.Add(float64(entries))
	r.recalcFailures.Add(float64(failedParticipants))
	r.recalcDuration.Observe(time.Since(started).Seconds())
}

// HTTPRequest counts one served request
func (r *Recorder) HTTPRequest(method, route string, status int) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
}

// RateLimited counts one rejected request
func (r *Recorder) RateLimited() {
	if r == nil {
		return
	}
	r.rateLimitedRequest.Inc()
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
