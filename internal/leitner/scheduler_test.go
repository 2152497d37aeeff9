package leitner

import (
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func assertFloat(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestInitialScheduleBox1(t *testing.T) {
	s := InitialSchedule(1, t0)
	if s.Box != 1 {
		t.Errorf("Box = %d, want 1", s.Box)
	}
	if s.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1", s.IntervalDays)
	}
	// Box 1 gets a quick recheck one hour out, not a full day.
	want := t0.Add(time.Hour)
	if !s.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", s.NextReviewAt, want)
	}
}

func TestInitialScheduleBox5(t *testing.T) {
	s := InitialSchedule(5, t0)
	if s.Box != 5 {
		t.Errorf("Box = %d, want 5", s.Box)
	}
	if s.IntervalDays != 30 {
		t.Errorf("IntervalDays = %d, want 30", s.IntervalDays)
	}
	want := t0.AddDate(0, 0, 30)
	if !s.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", s.NextReviewAt, want)
	}
}

func TestInitialScheduleClampsBox(t *testing.T) {
	for _, tc := range []struct{ in, want int }{
		{-3, 1}, {0, 1}, {1, 1}, {5, 5}, {6, 5}, {99, 5},
	} {
		if got := InitialSchedule(tc.in, t0).Box; got != tc.want {
			t.Errorf("InitialSchedule(%d).Box = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNextScheduleLapseAlwaysBoxOne(t *testing.T) {
	for box := MinBox; box <= MaxBox; box++ {
		for _, result := range []Result{Incorrect, Forgotten} {
			for _, ease := range []float64{1.3, 2.0, 2.5, 3.0} {
				s := NextSchedule(box, result, Medium, ease, t0)
				if s.Box != 1 {
					t.Errorf("box %d %v ease %v: Box = %d, want 1", box, result, ease, s.Box)
				}
				if s.EaseFactor < 2.0 {
					t.Errorf("box %d %v ease %v: EaseFactor = %v, want >= 2.0", box, result, ease, s.EaseFactor)
				}
			}
		}
	}
}

func TestNextScheduleEaseAlwaysInBounds(t *testing.T) {
	results := []Result{Correct, Partially, Incorrect, Forgotten}
	difficulties := []Difficulty{0, Easy, Medium, Hard, Again}
	eases := []float64{1.3, 1.35, 2.0, 2.5, 2.95, 3.0}

	for box := MinBox; box <= MaxBox; box++ {
		for _, result := range results {
			for _, difficulty := range difficulties {
				for _, ease := range eases {
					s := NextSchedule(box, result, difficulty, ease, t0)
					if s.EaseFactor < MinEase || s.EaseFactor > MaxEase {
						t.Errorf("box %d %v %v ease %v: EaseFactor %v out of [%v, %v]",
							box, result, difficulty, ease, s.EaseFactor, MinEase, MaxEase)
					}
				}
			}
		}
	}
}

func TestNextScheduleCorrectMedium(t *testing.T) {
	// Box 2 -> 3, ease bumped, interval is box 3's base tier. The box
	// changed, so no ease scaling.
	s := NextSchedule(2, Correct, Medium, 2.5, t0)
	if s.Box != 3 {
		t.Errorf("Box = %d, want 3", s.Box)
	}
	assertFloat(t, "EaseFactor", s.EaseFactor, 2.6)
	if s.IntervalDays != 7 {
		t.Errorf("IntervalDays = %d, want 7", s.IntervalDays)
	}
	want := t0.AddDate(0, 0, 7)
	if !s.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", s.NextReviewAt, want)
	}
}

func TestNextScheduleCorrectUnreportedDifficulty(t *testing.T) {
	// Difficulty zero value behaves like Medium.
	s := NextSchedule(2, Correct, 0, 2.5, t0)
	if s.Box != 3 {
		t.Errorf("Box = %d, want 3", s.Box)
	}
	assertFloat(t, "EaseFactor", s.EaseFactor, 2.6)
}

func TestNextScheduleCorrectHardScalesByEase(t *testing.T) {
	// Same box + correct triggers ease scaling: floor(7 * 2.45) = 17.
	s := NextSchedule(3, Correct, Hard, 2.5, t0)
	if s.Box != 3 {
		t.Errorf("Box = %d, want 3", s.Box)
	}
	assertFloat(t, "EaseFactor", s.EaseFactor, 2.45)
	if s.IntervalDays != 17 {
		t.Errorf("IntervalDays = %d, want 17", s.IntervalDays)
	}
}

func TestNextScheduleCorrectEasyJumpsTwo(t *testing.T) {
	s := NextSchedule(2, Correct, Easy, 2.5, t0)
	if s.Box != 4 {
		t.Errorf("Box = %d, want 4", s.Box)
	}
	assertFloat(t, "EaseFactor", s.EaseFactor, 2.65)
	if s.IntervalDays != 14 {
		t.Errorf("IntervalDays = %d, want 14", s.IntervalDays)
	}

	// Capped at box 5.
	s = NextSchedule(4, Correct, Easy, 2.5, t0)
	if s.Box != 5 {
		t.Errorf("Box = %d, want 5", s.Box)
	}
}

func TestNextSchedulePartiallyDropsOne(t *testing.T) {
	s := NextSchedule(3, Partially, Medium, 2.5, t0)
	if s.Box != 2 {
		t.Errorf("Box = %d, want 2", s.Box)
	}
	assertFloat(t, "EaseFactor", s.EaseFactor, 2.4)
	if s.IntervalDays != 3 {
		t.Errorf("IntervalDays = %d, want 3", s.IntervalDays)
	}

	// Floored at box 1.
	s = NextSchedule(1, Partially, Medium, 2.5, t0)
	if s.Box != 1 {
		t.Errorf("Box = %d, want 1", s.Box)
	}
}

func TestNextScheduleForgottenFloorsEase(t *testing.T) {
	// 2.2 - 0.3 = 1.9, floored at 2.0; lapse goes back to box 1 with a
	// one-hour recheck.
	s := NextSchedule(4, Forgotten, Medium, 2.2, t0)
	if s.Box != 1 {
		t.Errorf("Box = %d, want 1", s.Box)
	}
	assertFloat(t, "EaseFactor", s.EaseFactor, 2.0)
	if s.IntervalDays != 1 {
		t.Errorf("IntervalDays = %d, want 1", s.IntervalDays)
	}
	want := t0.Add(time.Hour)
	if !s.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", s.NextReviewAt, want)
	}
}

func TestIsDue(t *testing.T) {
	if !IsDue(t0, t0) {
		t.Error("a review due exactly now should be due")
	}
	if !IsDue(t0.Add(-time.Second), t0) {
		t.Error("a past review should be due")
	}
	if IsDue(t0.Add(time.Second), t0) {
		t.Error("a future review should not be due")
	}
}

func TestPriorityScore(t *testing.T) {
	// Box 1, 5 hours overdue, never reviewed: 500 + 5 + 10.
	got := PriorityScore(1, t0.Add(-5*time.Hour), 0, t0)
	assertFloat(t, "PriorityScore", got, 515)

	// Box 5, not yet due, heavily reviewed: base only.
	got = PriorityScore(5, t0.Add(2*time.Hour), 20, t0)
	assertFloat(t, "PriorityScore", got, 100)

	// Lower boxes always outrank higher ones at equal overdue-ness.
	lo := PriorityScore(2, t0, 3, t0)
	hi := PriorityScore(4, t0, 3, t0)
	if lo <= hi {
		t.Errorf("box 2 score %v should exceed box 4 score %v", lo, hi)
	}
}

func TestProgress(t *testing.T) {
	for _, tc := range []struct{ due, total, want int }{
		{0, 0, 100},
		{0, 10, 100},
		{5, 10, 50},
		{10, 10, 0},
		{1, 3, 67},
	} {
		if got := Progress(tc.due, tc.total); got != tc.want {
			t.Errorf("Progress(%d, %d) = %d, want %d", tc.due, tc.total, got, tc.want)
		}
	}
}
