package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan is an immutable catalog entry.
type Plan struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"durationDays"`
	Features     []string        `json:"features"`
}
