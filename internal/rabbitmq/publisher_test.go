package rabbitmq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"social-service/internal/telemetry"
)

func TestNewPublisherWithoutURLIsNoop(t *testing.T) {
	p := NewPublisher("", "social.events")

	assert.Equal(t, "noop", PublisherMode(p))
	assert.Equal(t, "empty amqp url", PublisherNoopReason(p))
	assert.NoError(t, p.Publish(context.Background(), "audit.social", telemetry.AuditEnvelope{EventType: "audit_log"}))
	assert.NoError(t, p.PublishJSON(context.Background(), "social.message.created", map[string]string{"id": "m1"}, nil))
	assert.NoError(t, p.Close())
}
