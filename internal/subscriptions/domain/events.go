package domain

import (
	"time"

	"github.com/google/uuid"

	shared "github.com/anandgupta07/coach-sub000/internal/shared/domain"
)

const (
	AggregateType = "Subscription"

	RoutingKeyActivated = "subscription.activated"
	RoutingKeyExpired   = "subscription.expired"
	RoutingKeyCancelled = "subscription.cancelled"
)

// SubscriptionActivated is published when checkout creates a subscription.
type SubscriptionActivated struct {
	shared.BaseEvent
	UserID    uuid.UUID `json:"userId"`
	PlanID    uuid.UUID `json:"planId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

func NewSubscriptionActivated(s *Subscription) SubscriptionActivated {
	return SubscriptionActivated{
		BaseEvent: shared.NewBaseEvent(s.ID, AggregateType, RoutingKeyActivated, s.CreatedAt),
		UserID:    s.UserID,
		PlanID:    s.PlanID,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
	}
}

// SubscriptionExpired is published when a read observes and records expiry.
type SubscriptionExpired struct {
	shared.BaseEvent
	UserID  uuid.UUID `json:"userId"`
	EndDate time.Time `json:"endDate"`
}

func NewSubscriptionExpired(s *Subscription, at time.Time) SubscriptionExpired {
	return SubscriptionExpired{
		BaseEvent: shared.NewBaseEvent(s.ID, AggregateType, RoutingKeyExpired, at),
		UserID:    s.UserID,
		EndDate:   s.EndDate,
	}
}

// SubscriptionCancelled is published after an explicit cancellation.
type SubscriptionCancelled struct {
	shared.BaseEvent
	UserID uuid.UUID `json:"userId"`
}

func NewSubscriptionCancelled(s *Subscription, at time.Time) SubscriptionCancelled {
	return SubscriptionCancelled{
		BaseEvent: shared.NewBaseEvent(s.ID, AggregateType, RoutingKeyCancelled, at),
		UserID:    s.UserID,
	}
}
