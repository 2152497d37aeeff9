// Package leitner implements a five-box Leitner scheduler with an
// SM-2-style ease factor. All functions are pure: the caller supplies
// the current time, so results are reproducible under test.
package leitner

import (
	"math"
	"time"
)

const (
	// DefaultEase is the ease factor assigned to a freshly enqueued question.
	DefaultEase = 2.5
	// MinEase and MaxEase bound the ease factor after any adjustment.
	MinEase = 1.3
	MaxEase = 3.0
	// lapseEaseFloor keeps a forgotten question from cratering its ease.
	lapseEaseFloor = 2.0
)

// Schedule is the outcome of a scheduling decision.
type Schedule struct {
	Box          int
	IntervalDays int
	EaseFactor   float64
	NextReviewAt time.Time
}

// InitialSchedule computes the first review time for a question entering
// the ladder at startBox (clamped into range). A one-day base interval is
// shortened to a one-hour recheck: brand-new material gets a near-immediate
// first pass instead of waiting a full day.
func InitialSchedule(startBox int, now time.Time) Schedule {
	box := ClampBox(startBox)
	interval := BaseInterval(box)

	next := now.AddDate(0, 0, interval)
	if interval == 1 {
		next = now.Add(time.Hour)
	}
	return Schedule{
		Box:          box,
		IntervalDays: interval,
		EaseFactor:   DefaultEase,
		NextReviewAt: next,
	}
}

// NextSchedule computes the box transition, ease adjustment and next due
// time after a review. A zero difficulty is treated as Medium; Again
// schedules like Hard.
//
// Box moves:
//
//	correct/easy    +2 (capped at 5), ease +0.15
//	correct/medium  +1 (capped at 5), ease +0.10
//	correct/hard    unchanged,        ease -0.05
//	partially       -1 (floor 1),     ease -0.10
//	incorrect,
//	forgotten       back to 1,        ease = max(2.0, ease-0.30)
func NextSchedule(currentBox int, result Result, difficulty Difficulty, currentEase float64, now time.Time) Schedule {
	newBox := currentBox
	ease := currentEase

	switch result {
	case Correct:
		switch difficulty {
		case Easy:
			newBox = ClampBox(currentBox + 2)
			ease += 0.15
		case Hard, Again:
			ease -= 0.05
		default: // Medium or unreported
			newBox = ClampBox(currentBox + 1)
			ease += 0.10
		}
	case Partially:
		newBox = ClampBox(currentBox - 1)
		ease -= 0.10
	case Incorrect, Forgotten:
		newBox = MinBox
		ease = math.Max(lapseEaseFloor, ease-0.30)
	}

	ease = math.Max(MinEase, math.Min(MaxEase, ease))
	ease = math.Round(ease*100) / 100

	interval := BaseInterval(newBox)
	// Staying in the same box on a genuinely correct answer still earns a
	// longer wait, scaled by the (already adjusted) ease factor.
	if newBox == currentBox && result == Correct {
		interval = int(math.Floor(float64(interval) * ease))
	}

	// A one-day interval means the question lapsed back to box 1; give it
	// the same one-hour recheck a fresh enqueue gets.
	next := now.AddDate(0, 0, interval)
	if interval == 1 {
		next = now.Add(time.Hour)
	}

	return Schedule{
		Box:          newBox,
		IntervalDays: interval,
		EaseFactor:   ease,
		NextReviewAt: next,
	}
}

// IsDue reports whether a review scheduled for nextReviewAt should be shown.
// A review due exactly now counts as due.
func IsDue(nextReviewAt, now time.Time) bool {
	return !nextReviewAt.After(now)
}

// PriorityScore ranks a pending review for reporting purposes. Higher is
// more urgent: lower boxes dominate, each overdue hour adds a point, and
// questions with little history get a small boost.
func PriorityScore(box int, nextReviewAt time.Time, reviewCount int, now time.Time) float64 {
	base := float64(MaxBox-box+1) * 100

	overdueHours := now.Sub(nextReviewAt).Hours()
	overdueBonus := math.Max(0, overdueHours)

	countBonus := math.Max(0, float64(10-reviewCount))

	return base + overdueBonus + countBonus
}

// Progress returns the percentage of the pool that is not currently due.
// An empty pool counts as fully caught up.
func Progress(dueCount, totalCount int) int {
	if totalCount == 0 {
		return 100
	}
	return int(math.Round(float64(totalCount-dueCount) / float64(totalCount) * 100))
}
