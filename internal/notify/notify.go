// internal/notify/notify.go

// Package notify fans screening decisions out to external channels.
package notify

import (
	"context"
	"errors"
	"time"

	apperrors "swipe-screening/internal/common/errors"
	"swipe-screening/internal/common/logger"
	"swipe-screening/internal/common/metrics"
	"swipe-screening/internal/models"
)

// Notifier is told about every status change made by a screening decision.
type Notifier interface {
	ApplicationDecided(ctx context.Context, ev models.DecisionEvent) error
}

// Nop discards events.
type Nop struct{}

func (Nop) ApplicationDecided(context.Context, models.DecisionEvent) error { return nil }

// Channel names a notifier for logs and metrics.
type Channel struct {
	Name     string
	Notifier Notifier
}

// Multi delivers each event to every channel in order. A failing channel does not
// stop the others; all failures are returned together.
type Multi struct {
	channels []Channel
	log      logger.Logger
}

func NewMulti(log logger.Logger, channels ...Channel) *Multi {
	return &Multi{channels: channels, log: log.Named("notify")}
}

// Len reports how many channels are configured.
func (m *Multi) Len() int {
	return len(m.channels)
}

func (m *Multi) ApplicationDecided(ctx context.Context, ev models.DecisionEvent) error {
	var errs []error
	for _, ch := range m.channels {
		start := time.Now()
		err := ch.Notifier.ApplicationDecided(ctx, ev)
		metrics.NotificationDuration.WithLabelValues(ch.Name).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.NotificationsSent.WithLabelValues(ch.Name, "failure").Inc()
			m.log.Error("Decision notification failed", map[string]interface{}{
				"channel":       ch.Name,
				"applicationId": ev.ApplicationID,
				"status":        string(ev.Status),
				"error":         err,
			})
			errs = append(errs, apperrors.NewNotificationSendFailedError(ch.Name, err))
			continue
		}
		metrics.NotificationsSent.WithLabelValues(ch.Name, "success").Inc()
	}
	return errors.Join(errs...)
}
