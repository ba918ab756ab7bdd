package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the stored lifecycle state.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusExpired   SubscriptionStatus = "expired"
	StatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription grants a user access to a plan for [StartDate, EndDate].
type Subscription struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"userId"`
	PlanID    uuid.UUID          `json:"planId"`
	Status    SubscriptionStatus `json:"status"`
	StartDate time.Time          `json:"startDate"`
	EndDate   time.Time          `json:"endDate"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// NewSubscription creates an active subscription over [start, end].
func NewSubscription(userID, planID uuid.UUID, start, end time.Time) (*Subscription, error) {
	if !end.After(start) {
		return nil, ErrInvalidWindow
	}
	now := start.UTC()
	return &Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		PlanID:    planID,
		Status:    StatusActive,
		StartDate: start.UTC(),
		EndDate:   end.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Activate starts plan for userID at now and runs for the plan's duration in calendar days.
func Activate(userID uuid.UUID, plan Plan, now time.Time) (*Subscription, error) {
	return NewSubscription(userID, plan.ID, now, now.AddDate(0, 0, plan.DurationDays))
}

// HasLapsed reports whether an active record is past its end date at now.
// An end date equal to now is still valid.
func (s *Subscription) HasLapsed(now time.Time) bool {
	return s.Status == StatusActive && s.EndDate.Before(now)
}

// IsActiveAt reports whether the subscription grants access at now.
func (s *Subscription) IsActiveAt(now time.Time) bool {
	return s.Status == StatusActive && !s.EndDate.Before(now)
}
