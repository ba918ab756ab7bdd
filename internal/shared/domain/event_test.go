package domain_test

import (
	"testing"
	"time"

	"github.com/anandgupta07/coach-sub000/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEvent(t *testing.T) {
	aggregateID := uuid.New()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))

	event := domain.NewBaseEvent(aggregateID, "Subscription", "subscription.expired", at)

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, aggregateID, event.AggregateID())
	assert.Equal(t, "Subscription", event.AggregateType())
	assert.Equal(t, "subscription.expired", event.RoutingKey())
	assert.True(t, event.OccurredAt().Equal(at))
	assert.Equal(t, time.UTC, event.OccurredAt().Location())
}
