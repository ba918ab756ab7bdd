package domain

import (
	"fmt"
	"math"
	"time"
)

const day = 24 * time.Hour

// Milestone granularity thresholds, in plan days.
const (
	weeklyMaxDays   = 100
	sixMonthMaxDays = 200
)

// Granularity is the unit of a milestone schedule.
type Granularity string

const (
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Milestone is one marker on the progress timeline.
type Milestone struct {
	Number    int     `json:"number"`
	Label     string  `json:"label"`
	Position  float64 `json:"position"`
	IsPassed  bool    `json:"isPassed"`
	IsCurrent bool    `json:"isCurrent"`
}

// Progress describes how far into its window a subscription is.
type Progress struct {
	TotalDays     int         `json:"totalDays"`
	CurrentDay    int         `json:"currentDay"`
	DaysRemaining int         `json:"daysRemaining"`
	Percent       int         `json:"percent"`
	Granularity   Granularity `json:"granularity"`
	Milestones    []Milestone `json:"milestones"`
}

// ceilDays converts d to whole days, rounding up.
func ceilDays(d time.Duration) int {
	return int(math.Ceil(float64(d) / float64(day)))
}

// DaysRemaining is the number of started days left before end. It is 0 at or after end.
func DaysRemaining(end, now time.Time) int {
	if !end.After(now) {
		return 0
	}
	return ceilDays(end.Sub(now))
}

// ProgressPercent is the elapsed share of [start, end] as a whole percentage in [0, 100].
// It is truncated, except that any progress below 1% reads as 1 so a started
// subscription never shows 0.
func ProgressPercent(start, end, now time.Time) int {
	total := end.Sub(start)
	if total <= 0 {
		if now.Before(end) {
			return 0
		}
		return 100
	}

	raw := float64(now.Sub(start)) / float64(total) * 100
	switch {
	case raw <= 0:
		return 0
	case raw < 1:
		return 1
	case raw >= 100:
		return 100
	}
	return int(math.Floor(raw))
}

// CurrentDay is the 1-based day of the window that now falls in. It is never below 1.
func CurrentDay(start, now time.Time) int {
	return max(1, ceilDays(now.Sub(start)))
}

// Milestones builds the schedule for a plan of totalDays. Plans up to 100 days get 12
// weekly markers, up to 200 days 6 monthly markers, longer plans 12 monthly markers.
func Milestones(totalDays, currentDay int) (Granularity, []Milestone) {
	var (
		granularity Granularity
		count       int
		period      int
		prefix      string
	)
	switch {
	case totalDays <= weeklyMaxDays:
		granularity, count, period, prefix = Weekly, 12, 7, "W"
	case totalDays <= sixMonthMaxDays:
		granularity, count, period, prefix = Monthly, 6, 30, "M"
	default:
		granularity, count, period, prefix = Monthly, 12, 30, "M"
	}

	current := (currentDay + period - 1) / period
	milestones := make([]Milestone, count)
	for i := range milestones {
		n := i + 1
		milestones[i] = Milestone{
			Number:    n,
			Label:     fmt.Sprintf("%s%d", prefix, n),
			Position:  float64(n) / float64(count) * 100,
			IsPassed:  n <= current,
			IsCurrent: n == current,
		}
	}
	return granularity, milestones
}

// ComputeProgress evaluates every progress figure for the window at now.
func ComputeProgress(start, end, now time.Time) Progress {
	totalDays := ceilDays(end.Sub(start))
	currentDay := CurrentDay(start, now)
	granularity, milestones := Milestones(totalDays, currentDay)

	return Progress{
		TotalDays:     totalDays,
		CurrentDay:    currentDay,
		DaysRemaining: DaysRemaining(end, now),
		Percent:       ProgressPercent(start, end, now),
		Granularity:   granularity,
		Milestones:    milestones,
	}
}

// Progress evaluates the subscription's progress at now.
func (s *Subscription) Progress(now time.Time) Progress {
	return ComputeProgress(s.StartDate, s.EndDate, now)
}
