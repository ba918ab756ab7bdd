package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	shared "github.com/anandgupta07/coach-sub000/internal/shared/domain"
)

// Handoff is the message passed to the external payment confirmation channel.
type Handoff struct {
	SessionID   uuid.UUID       `json:"sessionId"`
	UserID      uuid.UUID       `json:"userId"`
	Buyer       Details         `json:"buyer"`
	Plans       []string        `json:"plans"`
	PromoCode   string          `json:"promoCode,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	FinalAmount decimal.Decimal `json:"finalAmount"`
	ConfirmedAt time.Time       `json:"confirmedAt"`
}

// NewHandoff summarises a session that is about to complete.
func NewHandoff(s *Session, confirmedAt time.Time) Handoff {
	plans := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		plans = append(plans, item.Name)
	}
	h := Handoff{
		SessionID:   s.ID,
		UserID:      s.UserID,
		Buyer:       s.Details,
		Plans:       plans,
		Subtotal:    s.Subtotal(),
		Discount:    s.Discount(),
		FinalAmount: s.FinalAmount(),
		ConfirmedAt: confirmedAt.UTC(),
	}
	if s.Promo != nil {
		h.PromoCode = s.Promo.Code
	}
	return h
}

// HandoffRequested carries a Handoff to the confirmation channel's consumers.
type HandoffRequested struct {
	shared.BaseEvent
	Handoff
	Link string `json:"link,omitempty"`
}

func NewHandoffRequested(h Handoff, link string) HandoffRequested {
	return HandoffRequested{
		BaseEvent: shared.NewBaseEvent(h.SessionID, AggregateType, RoutingKeyHandoff, h.ConfirmedAt),
		Handoff:   h,
		Link:      link,
	}
}
