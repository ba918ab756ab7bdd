package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anandgupta07/coach-sub000/internal/checkout/domain"
	promotions "github.com/anandgupta07/coach-sub000/internal/promotions/domain"
	subscriptions "github.com/anandgupta07/coach-sub000/internal/subscriptions/domain"
)

// PlanCatalog resolves plans placed in a cart.
type PlanCatalog interface {
	GetPlan(ctx context.Context, id uuid.UUID) (*subscriptions.Plan, error)
}

// PromoPricer is the two-phase promo contract: Validate prices, Apply consumes.
type PromoPricer interface {
	Validate(ctx context.Context, code string, cartTotal decimal.Decimal) (*promotions.Quote, error)
	Apply(ctx context.Context, code string) (*promotions.PromoCode, error)
}

// Activator creates subscriptions for purchased plans.
type Activator interface {
	Activate(ctx context.Context, userID, planID uuid.UUID) (*subscriptions.Subscription, error)
	AnnounceActivation(ctx context.Context, sub *subscriptions.Subscription)
}

// HandoffChannel delivers a completed purchase to the external confirmation
// channel and returns the link the buyer follows.
type HandoffChannel interface {
	Send(ctx context.Context, handoff domain.Handoff) (string, error)
}
