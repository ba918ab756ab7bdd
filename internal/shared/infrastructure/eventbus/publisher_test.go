package eventbus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anandgupta07/coach-sub000/internal/shared/domain"
	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

type planChanged struct {
	domain.BaseEvent
	Name string `json:"name"`
}

func TestDomainPublisher_WrapsEventInEnvelope(t *testing.T) {
	mem := NewMemoryPublisher()
	pub := NewDomainPublisher(mem)
	aggregateID := uuid.New()
	at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	event := planChanged{
		BaseEvent: domain.NewBaseEvent(aggregateID, "Plan", "plan.changed", at),
		Name:      "3 Month Coaching",
	}
	ctx := observability.WithCorrelationID(context.Background(), "corr-1")

	require.NoError(t, pub.Publish(ctx, event))

	msgs := mem.Messages()
	require.Len(t, msgs, 1)
	env := msgs[0]
	assert.Equal(t, event.EventID(), env.EventID)
	assert.Equal(t, aggregateID, env.AggregateID)
	assert.Equal(t, "Plan", env.AggregateType)
	assert.Equal(t, "plan.changed", env.RoutingKey)
	assert.True(t, at.Equal(env.OccurredAt))
	assert.Equal(t, "corr-1", env.CorrelationID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "3 Month Coaching", payload["name"])
}

func TestMemoryPublisher_KeepsRawPayloads(t *testing.T) {
	mem := NewMemoryPublisher()

	require.NoError(t, mem.Publish(context.Background(), "handoff.requested", []byte("plain text")))

	msgs := mem.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "handoff.requested", msgs[0].RoutingKey)
	assert.Equal(t, "plain text", string(msgs[0].Payload))
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher(nil)
	assert.NoError(t, p.Publish(context.Background(), "any", []byte("{}")))
	assert.NoError(t, p.Close())
}
