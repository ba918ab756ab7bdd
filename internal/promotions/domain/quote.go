package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the priced result of a successful validation. It does not consume a use.
type Quote struct {
	PromoCode      string          `json:"promoCode"`
	DiscountType   DiscountType    `json:"discountType"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
	CartTotal      decimal.Decimal `json:"cartTotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
}

// Evaluate prices cartTotal with p at now. Checks run in order: expiry, usage, minimum cart.
func (p *PromoCode) Evaluate(cartTotal decimal.Decimal, now time.Time) (Quote, error) {
	if cartTotal.IsNegative() {
		return Quote{}, ErrInvalidCartTotal
	}
	if p.IsExpiredAt(now) {
		return Quote{}, ErrPromoExpired
	}
	if p.IsExhausted() {
		return Quote{}, ErrUsageLimitReached
	}
	if p.MinCartValue != nil && cartTotal.LessThan(*p.MinCartValue) {
		return Quote{}, ErrMinimumCartNotMet
	}

	discount := p.Discount(cartTotal)
	return Quote{
		PromoCode:      p.Code,
		DiscountType:   p.DiscountType,
		DiscountValue:  p.DiscountValue,
		CartTotal:      cartTotal,
		DiscountAmount: discount,
		FinalAmount:    cartTotal.Sub(discount),
	}, nil
}

// Discount returns the amount taken off cartTotal, rounded to cents and never more than cartTotal.
func (p *PromoCode) Discount(cartTotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch p.DiscountType {
	case DiscountPercentage:
		discount = cartTotal.Mul(p.DiscountValue).Div(hundred).Round(2)
	case DiscountFixed:
		discount = p.DiscountValue
	}
	if discount.GreaterThan(cartTotal) {
		discount = cartTotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount
}
