package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	shared "github.com/anandgupta07/coach-sub000/internal/shared/domain"
)

// DiscountType selects how DiscountValue is applied to a cart total.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// IsValid reports whether t is a known discount type.
func (t DiscountType) IsValid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

var (
	codePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)
	hundred     = decimal.NewFromInt(100)
)

// PromoCode is a discount definition with a bounded number of uses.
type PromoCode struct {
	ID            uuid.UUID        `json:"id"`
	Code          string           `json:"code"`
	DiscountType  DiscountType     `json:"discountType"`
	DiscountValue decimal.Decimal  `json:"discountValue"`
	UsageLimit    int              `json:"usageLimit"`
	UsageCount    int              `json:"usageCount"`
	MinCartValue  *decimal.Decimal `json:"minCartValue,omitempty"`
	ExpiresAt     *time.Time       `json:"expiresAt,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// NewPromoCodeParams carries the definition of a new code.
type NewPromoCodeParams struct {
	Code          string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	UsageLimit    int
	MinCartValue  *decimal.Decimal
	ExpiresAt     *time.Time
}

// NewPromoCode validates p and returns an unused code created at now.
func NewPromoCode(p NewPromoCodeParams, now time.Time) (*PromoCode, error) {
	code := NormalizeCode(p.Code)

	var fields []shared.FieldError
	if !codePattern.MatchString(code) {
		fields = append(fields, shared.FieldError{Field: "code", Message: "must be 3-32 letters, digits, dashes or underscores"})
	}
	if !p.DiscountType.IsValid() {
		fields = append(fields, shared.FieldError{Field: "discountType", Message: "must be percentage or fixed"})
	}
	if !p.DiscountValue.IsPositive() {
		fields = append(fields, shared.FieldError{Field: "discountValue", Message: "must be greater than zero"})
	} else if p.DiscountType == DiscountPercentage && p.DiscountValue.GreaterThan(hundred) {
		fields = append(fields, shared.FieldError{Field: "discountValue", Message: "must not exceed 100 percent"})
	}
	if p.UsageLimit < 1 {
		fields = append(fields, shared.FieldError{Field: "usageLimit", Message: "must be at least 1"})
	}
	if p.MinCartValue != nil && p.MinCartValue.IsNegative() {
		fields = append(fields, shared.FieldError{Field: "minCartValue", Message: "must not be negative"})
	}
	if p.ExpiresAt != nil && !p.ExpiresAt.After(now) {
		fields = append(fields, shared.FieldError{Field: "expiresAt", Message: "must be in the future"})
	}
	if len(fields) > 0 {
		err := shared.ValidationError(fields)
		err.Err = ErrInvalidDiscountDef
		return nil, err
	}

	promo := &PromoCode{
		ID:            uuid.New(),
		Code:          code,
		DiscountType:  p.DiscountType,
		DiscountValue: p.DiscountValue,
		UsageLimit:    p.UsageLimit,
		MinCartValue:  p.MinCartValue,
		CreatedAt:     now.UTC(),
	}
	if p.ExpiresAt != nil {
		expires := p.ExpiresAt.UTC()
		promo.ExpiresAt = &expires
	}
	return promo, nil
}

// NormalizeCode trims and upper-cases a code as typed by a buyer.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsExpiredAt reports whether the code's expiry has passed at now.
func (p *PromoCode) IsExpiredAt(now time.Time) bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(now)
}

// IsExhausted reports whether every use has been consumed.
func (p *PromoCode) IsExhausted() bool {
	return p.UsageCount >= p.UsageLimit
}

// RemainingUses is the number of applies still allowed.
func (p *PromoCode) RemainingUses() int {
	return max(p.UsageLimit-p.UsageCount, 0)
}
