// internal/notify/sns.go
package notify

import (
	"context"
	"fmt"

	"swipe-screening/internal/models"
)

// TopicPublisher is satisfied by aws.SNSClient.
type TopicPublisher interface {
	PublishJSON(ctx context.Context, topicARN, subject string, payload interface{}, attrs map[string]string) (string, error)
}

// SNSNotifier publishes every decision event to one topic.
type SNSNotifier struct {
	pub      TopicPublisher
	topicARN string
}

func NewSNSNotifier(pub TopicPublisher, topicARN string) *SNSNotifier {
	return &SNSNotifier{pub: pub, topicARN: topicARN}
}

func (n *SNSNotifier) ApplicationDecided(ctx context.Context, ev models.DecisionEvent) error {
	subject := fmt.Sprintf("Application %s: %s", ev.Status, ev.JobTitle)
	if len(subject) > 100 {
		subject = subject[:100]
	}
	_, err := n.pub.PublishJSON(ctx, n.topicARN, subject, ev, map[string]string{
		"event":  "application.decided",
		"status": string(ev.Status),
		"jobId":  ev.JobID,
	})
	return err
}
