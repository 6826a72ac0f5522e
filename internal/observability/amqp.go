package observability

import (
	"context"
	"log/slog"
)

// Publisher is the JSON event sink used for websocket lifecycle and domain events.
type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error
}

var defaultPublisher Publisher

func SetPublisher(publisher Publisher) {
	defaultPublisher = publisher
}

// PublishEvent sends through the process-wide publisher, if one is set.
func PublishEvent(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error {
	return PublishWith(ctx, defaultPublisher, routingKey, message, headers)
}

// PublishWith sends through publisher and counts failures. A nil publisher is a no-op.
func PublishWith(ctx context.Context, publisher Publisher, routingKey string, message interface{}, headers map[string]string) error {
	if publisher == nil {
		return nil
	}

	err := publisher.PublishJSON(ctx, routingKey, message, headers)
	if err != nil {
		IncAMQPPublishError()
		slog.WarnContext(ctx, "event publish failed", "routing_key", routingKey, "error", err)
	}
	return err
}
