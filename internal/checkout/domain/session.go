package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppliedPromo is the priced promo attached to a cart. It is a quote only;
// no use is consumed until the session completes.
type AppliedPromo struct {
	Code           string          `json:"code"`
	DiscountType   string          `json:"discountType"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

// Completion records what a confirmed payment produced.
type Completion struct {
	SubscriptionIDs []uuid.UUID     `json:"subscriptionIds"`
	FinalAmount     decimal.Decimal `json:"finalAmount"`
	PromoCode       string          `json:"promoCode,omitempty"`
	HandoffLink     string          `json:"handoffLink,omitempty"`
	CompletedAt     time.Time       `json:"completedAt"`
}

// Session is one buyer's walk through cart, details, payment and success.
// Every mutation goes through a method that checks the current State.
type Session struct {
	ID         uuid.UUID     `json:"id"`
	UserID     uuid.UUID     `json:"userId"`
	State      State         `json:"state"`
	Items      []CartItem    `json:"items"`
	Details    Details       `json:"details"`
	Promo      *AppliedPromo `json:"promo,omitempty"`
	Completion *Completion   `json:"completion,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// NewSession starts an empty cart for userID.
func NewSession(userID uuid.UUID, now time.Time) *Session {
	now = now.UTC()
	return &Session{
		ID:        uuid.New(),
		UserID:    userID,
		State:     StateCart,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Subtotal is the undiscounted cart total.
func (s *Session) Subtotal() decimal.Decimal {
	return Subtotal(s.Items)
}

// Discount is the attached promo's discount, or zero.
func (s *Session) Discount() decimal.Decimal {
	if s.Promo == nil {
		return decimal.Zero
	}
	return s.Promo.DiscountAmount
}

// FinalAmount is the amount the buyer settles: subtotal less discount, never negative.
func (s *Session) FinalAmount() decimal.Decimal {
	final := s.Subtotal().Sub(s.Discount())
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}

// AddItem places item in the cart.
func (s *Session) AddItem(item CartItem, now time.Time) error {
	if err := s.requireState(StateCart); err != nil {
		return err
	}
	if indexOf(s.Items, item.PlanID) >= 0 {
		return ErrDuplicateItem
	}
	s.Items = append(s.Items, item)
	s.touch(now)
	return nil
}

// WithoutItem returns the cart as it would be after removing planID.
func (s *Session) WithoutItem(planID uuid.UUID) ([]CartItem, error) {
	i := indexOf(s.Items, planID)
	if i < 0 {
		return nil, ErrItemNotInCart
	}
	items := make([]CartItem, 0, len(s.Items)-1)
	items = append(items, s.Items[:i]...)
	return append(items, s.Items[i+1:]...), nil
}

// RemoveItem drops planID from the cart. Emptying the cart clears the promo.
func (s *Session) RemoveItem(planID uuid.UUID, now time.Time) error {
	if err := s.requireState(StateCart); err != nil {
		return err
	}
	items, err := s.WithoutItem(planID)
	if err != nil {
		return err
	}
	s.Items = items
	if len(s.Items) == 0 {
		s.Promo = nil
	}
	s.touch(now)
	return nil
}

// CanAttachPromo reports whether a promo may be priced against the cart.
// Pricing needs a cart total, so the cart must not be empty.
func (s *Session) CanAttachPromo() error {
	if err := s.requireState(StateCart); err != nil {
		return err
	}
	if len(s.Items) == 0 {
		return ErrEmptyCart
	}
	return nil
}

// AttachPromo replaces the current discount.
func (s *Session) AttachPromo(promo AppliedPromo, now time.Time) error {
	if err := s.CanAttachPromo(); err != nil {
		return err
	}
	s.Promo = &promo
	s.touch(now)
	return nil
}

// ClearPromo removes any discount.
func (s *Session) ClearPromo(now time.Time) error {
	if err := s.requireState(StateCart); err != nil {
		return err
	}
	s.Promo = nil
	s.touch(now)
	return nil
}

// SetDetails stores the buyer's form. Fields are validated when leaving the details step.
func (s *Session) SetDetails(d Details, now time.Time) error {
	if err := s.requireState(StateDetails); err != nil {
		return err
	}
	s.Details = d.Normalize()
	s.touch(now)
	return nil
}

// Next advances cart to details or details to payment. Leaving payment is
// only possible through Complete.
func (s *Session) Next(now time.Time) error {
	switch s.State {
	case StateCart:
		if len(s.Items) == 0 {
			return ErrEmptyCart
		}
	case StateDetails:
		if err := s.Details.Validate(); err != nil {
			return err
		}
	case StateSuccess:
		return ErrSessionCompleted
	default:
		return ErrInvalidTransition
	}
	return s.moveTo(forward[s.State], now)
}

// Back returns to the previous step. Entered data is kept.
func (s *Session) Back(now time.Time) error {
	prev, ok := backward[s.State]
	if !ok {
		if s.State.IsTerminal() {
			return ErrSessionCompleted
		}
		return ErrInvalidTransition
	}
	return s.moveTo(prev, now)
}

// CanComplete reports whether payment may be confirmed.
func (s *Session) CanComplete() error {
	if s.State.IsTerminal() {
		return ErrSessionCompleted
	}
	if s.State != StatePayment {
		return ErrInvalidTransition
	}
	if len(s.Items) == 0 {
		return ErrEmptyCart
	}
	return s.Details.Validate()
}

// Complete moves payment to success.
func (s *Session) Complete(c Completion) error {
	if err := s.CanComplete(); err != nil {
		return err
	}
	c.CompletedAt = c.CompletedAt.UTC()
	s.Completion = &c
	return s.moveTo(StateSuccess, c.CompletedAt)
}

// CanCancel reports whether the session may still be discarded.
func (s *Session) CanCancel() error {
	if s.State.IsTerminal() {
		return ErrSessionCompleted
	}
	return nil
}

// TeardownDue reports whether a completed session has lingered on the
// confirmation step for at least linger.
func (s *Session) TeardownDue(now time.Time, linger time.Duration) bool {
	if s.State != StateSuccess || s.Completion == nil {
		return false
	}
	return !now.Before(s.Completion.CompletedAt.Add(linger))
}

// Reset clears the cart, promo and form and returns to the cart step.
func (s *Session) Reset(now time.Time) {
	s.State = StateCart
	s.Items = []CartItem{}
	s.Details = Details{}
	s.Promo = nil
	s.Completion = nil
	s.touch(now)
}

func (s *Session) requireState(state State) error {
	if s.State == state {
		return nil
	}
	if s.State.IsTerminal() {
		return ErrSessionCompleted
	}
	return ErrInvalidTransition
}

func (s *Session) moveTo(to State, now time.Time) error {
	if !s.State.CanAdvanceTo(to) && !s.State.CanGoBackTo(to) {
		return ErrInvalidTransition
	}
	s.State = to
	s.touch(now)
	return nil
}

func (s *Session) touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}
