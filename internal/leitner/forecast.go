package leitner

import (
	"fmt"
	"time"
)

// Upcoming is the slice of a pending review that load forecasting needs.
type Upcoming struct {
	NextReviewAt time.Time
	Box          int
}

// DayLoad is the forecast review load for one calendar day.
type DayLoad struct {
	Date  time.Time   `json:"date"`
	Count int         `json:"count"`
	ByBox map[int]int `json:"byBox,omitempty"`
}

// Move proposes shifting Count reviews from one day to an earlier one.
type Move struct {
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
	Count int       `json:"count"`
}

// Optimization is the result of scanning a forecast for overloaded days.
// It only proposes; nothing is rescheduled.
type Optimization struct {
	HasOverload     bool     `json:"hasOverload"`
	Recommendations []string `json:"recommendations"`
	SuggestedMoves  []Move   `json:"suggestedMoves"`
}

// Midnight truncates t to the start of its calendar day, keeping the
// location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ForecastLoad buckets pending reviews by the calendar day they come due,
// for `days` days starting today (day 0). Each bucket spans [midnight,
// next midnight). Reviews outside the window are not counted.
func ForecastLoad(pending []Upcoming, days int, now time.Time) []DayLoad {
	forecast := make([]DayLoad, 0, days)

	for i := 0; i < days; i++ {
		dayStart := Midnight(now).AddDate(0, 0, i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		load := DayLoad{Date: dayStart, ByBox: map[int]int{}}
		for _, p := range pending {
			if !p.NextReviewAt.Before(dayStart) && p.NextReviewAt.Before(dayEnd) {
				load.Count++
				load.ByBox[p.Box]++
			}
		}
		forecast = append(forecast, load)
	}
	return forecast
}

// lookbackDays is how far back OptimizeForecast searches for quiet days to
// absorb an overload. Moves only go backward: pulling reviews earlier is
// safe, pushing them later weakens retention.
const lookbackDays = 3

// OptimizeForecast flags days whose load exceeds maxDaily and proposes
// moving part of the excess into quiet preceding days (load below half of
// maxDaily). A quiet day absorbs at most half of its remaining headroom.
func OptimizeForecast(forecast []DayLoad, maxDaily int) Optimization {
	opt := Optimization{
		Recommendations: []string{},
		SuggestedMoves:  []Move{},
	}

	for i, day := range forecast {
		if day.Count <= maxDaily {
			continue
		}
		opt.HasOverload = true
		excess := day.Count - maxDaily

		opt.Recommendations = append(opt.Recommendations,
			fmt.Sprintf("%s has a heavy load (%d reviews due)", day.Date.Format("2006-01-02"), day.Count),
			fmt.Sprintf("consider reviewing %d of them early to spread the work", excess),
		)

		for j := max(0, i-lookbackDays); j < i; j++ {
			quiet := forecast[j]
			if float64(quiet.Count) < float64(maxDaily)*0.5 {
				moveCount := min(excess, (maxDaily-quiet.Count)/2)
				opt.SuggestedMoves = append(opt.SuggestedMoves, Move{
					From:  day.Date,
					To:    quiet.Date,
					Count: moveCount,
				})
			}
		}
	}
	return opt
}
