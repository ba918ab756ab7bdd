package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anandgupta07/coach-sub000/internal/shared/domain"
	"github.com/anandgupta07/coach-sub000/pkg/observability"
)

// Publisher sends raw messages to the message broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// Envelope is the wire format of every published domain event.
type Envelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// PublishEvent wraps event in an Envelope and publishes it under the event's routing key.
// The event itself is marshalled as the payload.
func PublishEvent(ctx context.Context, pub Publisher, event domain.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.RoutingKey(), err)
	}

	body, err := json.Marshal(Envelope{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		CorrelationID: observability.CorrelationID(ctx),
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	return pub.Publish(ctx, event.RoutingKey(), body)
}

// DomainPublisher adapts a Publisher to application.EventPublisher.
type DomainPublisher struct {
	pub Publisher
}

// NewDomainPublisher wraps pub.
func NewDomainPublisher(pub Publisher) *DomainPublisher {
	return &DomainPublisher{pub: pub}
}

func (d *DomainPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	return PublishEvent(ctx, d.pub, event)
}

// MemoryPublisher keeps published envelopes in memory.
type MemoryPublisher struct {
	mu       sync.Mutex
	messages []Envelope
}

// NewMemoryPublisher creates an empty MemoryPublisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		env = Envelope{Payload: append(json.RawMessage(nil), payload...)}
	}
	env.RoutingKey = routingKey

	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, env)
	return nil
}

// Messages returns a copy of everything published so far.
func (p *MemoryPublisher) Messages() []Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Envelope(nil), p.messages...)
}

func (p *MemoryPublisher) Close() error { return nil }
