package display

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/events"
)

// Notifier pushes queue events onto a Redis stream consumed by lobby display
// boards. Losing Redis only degrades the displays, so every failure here is
// logged and swallowed.
type Notifier struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewNotifier constructs the notifier.
func NewNotifier(client *redis.Client, stream string, logger *zap.Logger) *Notifier {
	return &Notifier{client: client, stream: stream, logger: logger}
}

// RegisterHandlers subscribes the notifier to queue events.
func (n *Notifier) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketIssued, n.handleTicketIssued)
	dispatcher.Subscribe(events.EventTicketCalled, n.handleTicketCalled)
	dispatcher.Subscribe(events.EventQueueReset, n.handleQueueReset)
}

func (n *Notifier) handleTicketIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketIssuedPayload)
	if !ok {
		return nil
	}
	n.publish(ctx, map[string]interface{}{
		"event":         string(events.EventTicketIssued),
		"ticket_number": payload.TicketNumber,
		"at":            payload.IssuedAt.UTC().Format(time.RFC3339),
	})
	return nil
}

func (n *Notifier) handleTicketCalled(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCalledPayload)
	if !ok {
		return nil
	}
	n.publish(ctx, map[string]interface{}{
		"event":             string(events.EventTicketCalled),
		"ticket_number":     payload.TicketNumber,
		"at":                payload.CalledAt.UTC().Format(time.RFC3339),
		"wait_time_seconds": payload.WaitTimeSeconds,
	})
	return nil
}

func (n *Notifier) handleQueueReset(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.QueueResetPayload)
	if !ok {
		return nil
	}
	n.publish(ctx, map[string]interface{}{
		"event":         string(events.EventQueueReset),
		"tickets_reset": payload.TicketsReset,
	})
	return nil
}

func (n *Notifier) publish(ctx context.Context, values map[string]interface{}) {
	if n.client == nil {
		return
	}
	err := n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		Values: values,
	}).Err()
	if err != nil {
		n.logger.Warn("display notification dropped", zap.Error(err))
	}
}
