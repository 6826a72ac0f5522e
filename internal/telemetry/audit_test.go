package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	key    string
	events []any
}

func (c *capturePublisher) Publish(_ context.Context, routingKey string, event any) error {
	c.key = routingKey
	c.events = append(c.events, event)
	return nil
}

func TestEmitBuildsEnvelope(t *testing.T) {
	pub := &capturePublisher{}
	emitter := NewAuditEmitter(pub, "audit.social", "social-service", "test")
	user := "u1"

	emitter.Emit(context.Background(), "info", "community created", "req-1", &user, map[string]string{"community_id": "c1"})

	require.Len(t, pub.events, 1)
	env, ok := pub.events[0].(AuditEnvelope)
	require.True(t, ok)
	assert.Equal(t, "audit.social", pub.key)
	assert.Equal(t, "audit_log", env.EventType)
	assert.Equal(t, "social-service", env.Service)
	assert.Equal(t, "req-1", env.RequestID)
	assert.Equal(t, "u1", *env.UserID)
	assert.Equal(t, "c1", env.Payload.Fields["community_id"])
}

func TestEmitOnNilEmitterIsSafe(t *testing.T) {
	var emitter *AuditEmitter
	assert.NotPanics(t, func() {
		emitter.Emit(context.Background(), "info", "x", "", nil, nil)
	})
}
