// internal/common/camunda/publisher.go
package camunda

import (
	"context"
	"fmt"
)

// Message is a correlated message for a waiting process instance.
type Message struct {
	Name           string
	CorrelationKey string
	MessageID      string
	Variables      interface{}
}

// PublishMessage publishes msg with the configured TTL and returns the message key.
func (c *Client) PublishMessage(ctx context.Context, msg Message) (int64, error) {
	if msg.Name == "" || msg.CorrelationKey == "" {
		return 0, fmt.Errorf("message name and correlation key are required")
	}

	var key int64
	err := c.ExecuteWithRetry(ctx, func(ctx context.Context) error {
		reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()

		cmd := c.client.NewPublishMessageCommand().
			MessageName(msg.Name).
			CorrelationKey(msg.CorrelationKey).
			TimeToLive(c.config.MessageTTL)
		if msg.MessageID != "" {
			cmd = cmd.MessageId(msg.MessageID)
		}
		if msg.Variables != nil {
			withVars, err := cmd.VariablesFromObject(msg.Variables)
			if err != nil {
				return fmt.Errorf("encode variables: %w", err)
			}
			cmd = withVars
		}

		resp, err := cmd.Send(reqCtx)
		if err != nil {
			return err
		}
		key = resp.GetKey()
		return nil
	}, "publish-message:"+msg.Name)
	return key, err
}
