package notify

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher puts a JSON document on a message queue.
type Publisher interface {
	PublishJSON(v interface{}) error
}

// QueueMailer hands messages to a queue; a consumer running DeliveryHandler
// performs the actual send.
type QueueMailer struct {
	publisher Publisher
}

// NewQueueMailer creates a mailer publishing through p.
func NewQueueMailer(p Publisher) *QueueMailer {
	return &QueueMailer{publisher: p}
}

// Send enqueues msg.
func (m *QueueMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("message %q has no recipients", msg.Subject)
	}
	if err := m.publisher.PublishJSON(msg); err != nil {
		return fmt.Errorf("failed to enqueue %q: %w", msg.Subject, err)
	}
	return nil
}

// DeliveryHandler decodes queued messages and sends them with mailer.
func DeliveryHandler(mailer Mailer) func(ctx context.Context, body []byte) error {
	return func(ctx context.Context, body []byte) error {
		var msg Message
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to decode queued email: %w", err)
		}
		return mailer.Send(ctx, msg)
	}
}
