package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	shared "github.com/anandgupta07/coach-sub000/internal/shared/domain"
)

const (
	AggregateType = "CheckoutSession"

	RoutingKeyCompleted = "checkout.completed"
	RoutingKeyHandoff   = "checkout.handoff"
)

// CheckoutCompleted is published once a confirmed payment has been committed.
type CheckoutCompleted struct {
	shared.BaseEvent
	UserID          uuid.UUID       `json:"userId"`
	PlanIDs         []uuid.UUID     `json:"planIds"`
	SubscriptionIDs []uuid.UUID     `json:"subscriptionIds"`
	PromoCode       string          `json:"promoCode,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	FinalAmount     decimal.Decimal `json:"finalAmount"`
}

func NewCheckoutCompleted(s *Session) CheckoutCompleted {
	planIDs := make([]uuid.UUID, 0, len(s.Items))
	for _, item := range s.Items {
		planIDs = append(planIDs, item.PlanID)
	}
	e := CheckoutCompleted{
		BaseEvent:   shared.NewBaseEvent(s.ID, AggregateType, RoutingKeyCompleted, s.UpdatedAt),
		UserID:      s.UserID,
		PlanIDs:     planIDs,
		Subtotal:    s.Subtotal(),
		Discount:    s.Discount(),
		FinalAmount: s.FinalAmount(),
	}
	if s.Completion != nil {
		e.SubscriptionIDs = s.Completion.SubscriptionIDs
		e.PromoCode = s.Completion.PromoCode
	}
	return e
}
