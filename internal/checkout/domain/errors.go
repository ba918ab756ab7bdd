package domain

import shared "github.com/anandgupta07/coach-sub000/internal/shared/domain"

var (
	ErrSessionNotFound   = shared.NewError(shared.KindNotFound, "checkout session not found")
	ErrItemNotInCart     = shared.NewError(shared.KindNotFound, "plan is not in the cart")
	ErrEmptyCart         = shared.NewError(shared.KindInvalidTransition, "add a plan to the cart first")
	ErrDuplicateItem     = shared.NewError(shared.KindInvalidTransition, "plan is already in the cart")
	ErrInvalidTransition = shared.NewError(shared.KindInvalidTransition, "action is not allowed in the current checkout step")
	ErrSessionCompleted  = shared.NewError(shared.KindInvalidTransition, "checkout is already complete")
	ErrConfirmInProgress = shared.NewError(shared.KindInvalidTransition, "payment for this checkout is already being confirmed")
)
