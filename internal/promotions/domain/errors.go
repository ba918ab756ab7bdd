package domain

import shared "github.com/anandgupta07/coach-sub000/internal/shared/domain"

var (
	ErrPromoNotFound      = shared.NewError(shared.KindNotFound, "promo code not found")
	ErrPromoExpired       = shared.NewError(shared.KindExpired, "promo code has expired")
	ErrUsageLimitReached  = shared.NewError(shared.KindUsageLimitReached, "promo code usage limit reached")
	ErrMinimumCartNotMet  = shared.NewError(shared.KindMinimumCartNotMet, "cart total is below the minimum for this promo code")
	ErrInvalidCartTotal   = shared.NewError(shared.KindValidation, "cart total must not be negative")
	ErrCodeAlreadyExists  = shared.NewError(shared.KindValidation, "promo code already exists")
	ErrInvalidDiscountDef = shared.NewError(shared.KindValidation, "invalid promo code definition")
)
