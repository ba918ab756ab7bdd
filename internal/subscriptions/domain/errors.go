package domain

import shared "github.com/anandgupta07/coach-sub000/internal/shared/domain"

var (
	ErrNoActiveSubscription = shared.NewError(shared.KindNotFound, "no active subscription.")
	ErrSubscriptionNotFound = shared.NewError(shared.KindNotFound, "subscription not found")
	ErrPlanNotFound         = shared.NewError(shared.KindNotFound, "plan not found")
	ErrInvalidWindow        = shared.NewError(shared.KindValidation, "subscription must end after it starts")
	ErrNotCancellable       = shared.NewError(shared.KindInvalidTransition, "only an active subscription can be cancelled")
)
