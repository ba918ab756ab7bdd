package application

import (
	"context"

	"github.com/anandgupta07/coach-sub000/internal/shared/domain"
)

// EventPublisher publishes domain events after the state change they describe is durable.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.DomainEvent) error
}

// NoopEventPublisher discards events.
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, domain.DomainEvent) error { return nil }
