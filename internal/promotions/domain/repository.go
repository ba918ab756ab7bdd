package domain

import "context"

// Repository persists promo codes. Lookups are case-insensitive.
type Repository interface {
	// Create stores a new code and returns ErrCodeAlreadyExists on a duplicate.
	Create(ctx context.Context, promo *PromoCode) error
	// FindByCode returns nil when no code matches.
	FindByCode(ctx context.Context, code string) (*PromoCode, error)
	List(ctx context.Context) ([]*PromoCode, error)
	// IncrementUsage consumes one use only while usage_count < usage_limit.
	// It reports false when no row matched.
	IncrementUsage(ctx context.Context, code string) (bool, error)
}
