// internal/notify/zeebe.go
package notify

import (
	"context"

	"swipe-screening/internal/common/camunda"
	"swipe-screening/internal/models"
)

// MessagePublisher is satisfied by camunda.Client.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, msg camunda.Message) (int64, error)
}

// ZeebeNotifier correlates decisions with the hiring process waiting on the application.
type ZeebeNotifier struct {
	pub         MessagePublisher
	messageName string
}

func NewZeebeNotifier(pub MessagePublisher, messageName string) *ZeebeNotifier {
	return &ZeebeNotifier{pub: pub, messageName: messageName}
}

func (n *ZeebeNotifier) ApplicationDecided(ctx context.Context, ev models.DecisionEvent) error {
	_, err := n.pub.PublishMessage(ctx, camunda.Message{
		Name:           n.messageName,
		CorrelationKey: ev.ApplicationID,
		MessageID:      ev.ApplicationID + ":" + string(ev.Status),
		Variables: map[string]interface{}{
			"applicationId": ev.ApplicationID,
			"jobId":         ev.JobID,
			"candidateId":   ev.CandidateID,
			"status":        string(ev.Status),
			"decidedBy":     ev.DecidedBy,
			"decidedAt":     ev.DecidedAt,
		},
	})
	return err
}
