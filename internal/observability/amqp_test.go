package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	routingKey string
	env        EventEnvelope
	headers    map[string]string
	err        error
}

func (p *capturePublisher) Publish(_ context.Context, routingKey string, env EventEnvelope, headers map[string]string) error {
	p.routingKey = routingKey
	p.env = env
	p.headers = headers
	return p.err
}

func TestPublishEventStampsEnvelope(t *testing.T) {
	capture := &capturePublisher{}
	SetPublisher(capture)
	defer SetPublisher(nil)

	err := PublishEvent(context.Background(), "chat.room.7", EventEnvelope{
		EventType: "chat_events",
		EventName: "room_message",
		Payload:   map[string]int{"id": 1},
	})
	require.NoError(t, err)

	assert.Equal(t, "chat.room.7", capture.routingKey)
	assert.Equal(t, "room_message", capture.env.EventName)
	assert.Equal(t, "portal-service", capture.env.Source)
	assert.False(t, capture.env.OccurredAt.IsZero())
}

func TestPublishEventWithoutPublisherIsNoop(t *testing.T) {
	SetPublisher(nil)

	err := PublishEvent(context.Background(), "chat.room.7", EventEnvelope{EventName: "room_message"})
	require.NoError(t, err)
}
