// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Check-in outcomes.
const (
	OutcomeNewVisit    = "new_visit"
	OutcomeRepeatVisit = "repeat_visit"
	OutcomeTooFar      = "too_far"
	OutcomeRejected    = "rejected"
	OutcomeError       = "error"
)

// Prometheus metrics for the geoquest API.
var (
	// Counters.
	CheckinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoquest_checkins_total",
			Help: "Total number of check-in attempts by outcome",
		},
		[]string{"outcome"},
	)

	AchievementsUnlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoquest_achievements_unlocked_total",
			Help: "Total number of achievements credited to users",
		},
		[]string{"achievement"},
	)

	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoquest_auth_attempts_total",
			Help: "Total registration and login attempts",
		},
		[]string{"action", "status"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoquest_cache_lookups_total",
			Help: "Location catalog cache lookups by result",
		},
		[]string{"result"},
	)

	// Gauges.
	AchievementHolders = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "geoquest_achievement_holders",
			Help: "Current number of users holding each achievement",
		},
		[]string{"achievement"},
	)

	ReconcileLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "geoquest_reconcile_last_run_timestamp",
			Help: "Unix timestamp of the last achievement reconciliation",
		},
	)

	// Histograms.
	CheckinDistanceMeters = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geoquest_checkin_distance_meters",
			Help:    "Distance between the submitted position and the location",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8), // 10m to ~160km
		},
	)

	CheckinDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geoquest_checkin_duration_seconds",
			Help:    "Time taken to process a check-in transaction",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geoquest_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordCheckin records a check-in attempt.
func RecordCheckin(outcome string) {
	CheckinsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCheckinDistance observes the measured check-in distance.
func ObserveCheckinDistance(meters float64) {
	CheckinDistanceMeters.Observe(meters)
}

// ObserveCheckinDuration observes the duration of a check-in.
func ObserveCheckinDuration(seconds float64) {
	CheckinDurationSeconds.Observe(seconds)
}

// RecordAchievementUnlocked records an achievement credit.
func RecordAchievementUnlocked(achievement string) {
	AchievementsUnlockedTotal.WithLabelValues(achievement).Inc()
}

// SetAchievementHolders sets the number of holders for an achievement.
func SetAchievementHolders(achievement string, count int64) {
	AchievementHolders.WithLabelValues(achievement).Set(float64(count))
}

// SetReconcileLastRun sets the timestamp of the last reconciliation.
func SetReconcileLastRun() {
	ReconcileLastRunTimestamp.SetToCurrentTime()
}

// RecordAuthAttempt records a registration or login attempt.
func RecordAuthAttempt(action, status string) {
	AuthAttemptsTotal.WithLabelValues(action, status).Inc()
}

// RecordCacheLookup records a cache hit, miss or error.
func RecordCacheLookup(result string) {
	CacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest observes the latency of an HTTP request.
func ObserveHTTPRequest(method, route, status string, seconds float64) {
	HTTPRequestDurationSeconds.WithLabelValues(method, route, status).Observe(seconds)
}
