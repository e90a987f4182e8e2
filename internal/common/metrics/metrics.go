// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScreeningDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_decisions_total",
			Help: "Screening decisions by outcome and resulting status",
		},
		[]string{"outcome", "status"},
	)

	ScreeningDecisionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "screening_decision_failures_total",
			Help: "Decisions whose status write failed",
		},
	)

	GestureCancels = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "screening_gesture_cancels_total",
			Help: "Drags released inside the swipe threshold",
		},
	)

	ScreeningSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "screening_sessions_active",
			Help: "Number of open screening sessions",
		},
	)

	ScreeningSessionsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_sessions_closed_total",
			Help: "Screening sessions removed from the registry",
		},
		[]string{"reason"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Decision notifications by channel and result",
		},
		[]string{"channel", "result"},
	)

	NotificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_duration_seconds",
			Help:    "Time spent delivering a decision notification",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)
)
