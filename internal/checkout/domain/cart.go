package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a plan placed in the cart, priced at the time it was added.
type CartItem struct {
	PlanID       uuid.UUID       `json:"planId"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"durationDays"`
	Features     []string        `json:"features,omitempty"`
}

// Subtotal is the sum of item prices.
func Subtotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total
}

func indexOf(items []CartItem, planID uuid.UUID) int {
	for i, item := range items {
		if item.PlanID == planID {
			return i
		}
	}
	return -1
}
