package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SubscriptionRepository defines access for subscription persistence.
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *Subscription) error
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	// FindLatestActive returns the active record with the latest end date, or nil.
	FindLatestActive(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Subscription, error)
	// MarkExpired moves an active record whose end date is before now to expired.
	// It reports false when the guard did not match.
	MarkExpired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	// Cancel moves an active record owned by userID to cancelled.
	Cancel(ctx context.Context, id, userID uuid.UUID, now time.Time) (bool, error)
}

// PlanRepository reads the plan catalog.
type PlanRepository interface {
	List(ctx context.Context) ([]Plan, error)
	// FindByID returns nil when the plan does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*Plan, error)
}
