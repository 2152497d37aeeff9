package reviewqueue

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mistakebook/review_server/internal/leitner"
	"github.com/mistakebook/review_server/internal/stores"
)

// WindowStats is a reviewed/correct breakdown over a time window.
type WindowStats struct {
	Total     int `json:"total"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// BoxStats describes the pending load of one box.
type BoxStats struct {
	Box         int    `json:"box"`
	Label       string `json:"label"`
	Count       int    `json:"count"`
	DueToday    int    `json:"dueToday"`
	DueThisWeek int    `json:"dueThisWeek"`
}

// Statistics is the user's overall review picture.
type Statistics struct {
	TotalReviews    int         `json:"totalReviews"`
	PendingReviews  int         `json:"pendingReviews"`
	CompletedToday  int         `json:"completedToday"`
	CorrectRate     float64     `json:"correctRate"`
	TodayReviews    WindowStats `json:"todayReviews"`
	WeekReviews     WindowStats `json:"weekReviews"`
	MonthReviews    WindowStats `json:"monthReviews"`
	BoxDistribution []BoxStats  `json:"boxDistribution"`
}

func (s *Service) windowStats(ctx context.Context, userID int64, since time.Time) (WindowStats, error) {
	total, err := s.Store.CountReviews(ctx, stores.ReviewFilter{
		UserID: userID, Status: stores.StatusReviewed, ReviewedAfter: &since,
	})
	if err != nil {
		return WindowStats{}, err
	}
	correct := true
	correctCount, err := s.Store.CountReviews(ctx, stores.ReviewFilter{
		UserID: userID, Status: stores.StatusReviewed, ReviewedAfter: &since, IsCorrect: &correct,
	})
	if err != nil {
		return WindowStats{}, err
	}
	return WindowStats{Total: total, Correct: correctCount, Incorrect: total - correctCount}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Statistics aggregates totals, correctness windows (today since local
// midnight, rolling 7 and 30 days) and the per-box pending distribution.
func (s *Service) Statistics(ctx context.Context, userID int64) (*Statistics, error) {
	now := s.Nower.Now()

	total, err := s.Store.CountReviews(ctx, stores.ReviewFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	pending, err := s.Store.CountReviews(ctx, stores.ReviewFilter{
		UserID: userID, Status: stores.StatusPending,
	})
	if err != nil {
		return nil, err
	}

	today, err := s.windowStats(ctx, userID, leitner.Midnight(now))
	if err != nil {
		return nil, err
	}
	week, err := s.windowStats(ctx, userID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	month, err := s.windowStats(ctx, userID, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	allReviewed, err := s.Store.CountReviews(ctx, stores.ReviewFilter{
		UserID: userID, Status: stores.StatusReviewed,
	})
	if err != nil {
		return nil, err
	}
	correct := true
	allCorrect, err := s.Store.CountReviews(ctx, stores.ReviewFilter{
		UserID: userID, Status: stores.StatusReviewed, IsCorrect: &correct,
	})
	if err != nil {
		return nil, err
	}
	correctRate := 0.0
	if allReviewed > 0 {
		correctRate = round2(float64(allCorrect) / float64(allReviewed) * 100)
	}

	weekEnd := now.AddDate(0, 0, 7)
	distribution := make([]BoxStats, 0, len(leitner.Boxes))
	for _, b := range leitner.Boxes {
		count, err := s.Store.CountReviews(ctx, stores.ReviewFilter{
			UserID: userID, Status: stores.StatusPending, Box: b.Box,
		})
		if err != nil {
			return nil, err
		}
		dueToday, err := s.Store.CountReviews(ctx, stores.ReviewFilter{
			UserID: userID, Status: stores.StatusPending, Box: b.Box, DueBefore: &now,
		})
		if err != nil {
			return nil, err
		}
		dueThisWeek, err := s.Store.CountReviews(ctx, stores.ReviewFilter{
			UserID: userID, Status: stores.StatusPending, Box: b.Box, DueBefore: &weekEnd,
		})
		if err != nil {
			return nil, err
		}
		distribution = append(distribution, BoxStats{
			Box:         b.Box,
			Label:       b.Label,
			Count:       count,
			DueToday:    dueToday,
			DueThisWeek: dueThisWeek,
		})
	}

	return &Statistics{
		TotalReviews:    total,
		PendingReviews:  pending,
		CompletedToday:  today.Total,
		CorrectRate:     correctRate,
		TodayReviews:    today,
		WeekReviews:     week,
		MonthReviews:    month,
		BoxDistribution: distribution,
	}, nil
}

// ScheduleSummary totals the pending load by horizon, measured from local
// midnight today. Overdue reviews count toward the totals but not toward
// any day bucket.
type ScheduleSummary struct {
	TotalDue     int `json:"totalDue"`
	DueToday     int `json:"dueToday"`
	DueThisWeek  int `json:"dueThisWeek"`
	DueThisMonth int `json:"dueThisMonth"`
}

// ScheduleReport is the forecast load for the coming days.
type ScheduleReport struct {
	Schedule []leitner.DayLoad `json:"schedule"`
	Summary  ScheduleSummary   `json:"summary"`
}

func (s *Service) pendingUpcoming(ctx context.Context, userID int64, subjectID string) ([]leitner.Upcoming, error) {
	rows, err := s.Store.ListReviews(ctx, stores.ReviewFilter{
		UserID:    userID,
		Status:    stores.StatusPending,
		SubjectID: subjectID,
	}, stores.OrderDueAsc, 0, 0)
	if err != nil {
		return nil, err
	}
	upcoming := make([]leitner.Upcoming, len(rows))
	for i, r := range rows {
		upcoming[i] = leitner.Upcoming{NextReviewAt: r.NextReviewAt, Box: r.Box}
	}
	return upcoming, nil
}

// Schedule buckets the user's pending reviews by calendar day over the
// next days days.
func (s *Service) Schedule(ctx context.Context, userID int64, days int, subjectID string) (*ScheduleReport, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: negative days", ErrValidation)
	}
	if days == 0 {
		days = 7
	}

	now := s.Nower.Now()
	upcoming, err := s.pendingUpcoming(ctx, userID, subjectID)
	if err != nil {
		return nil, err
	}

	forecast := leitner.ForecastLoad(upcoming, days, now)

	today := leitner.Midnight(now)
	summary := ScheduleSummary{TotalDue: len(upcoming)}
	for _, u := range upcoming {
		if u.NextReviewAt.Before(today) {
			continue
		}
		switch {
		case u.NextReviewAt.Before(today.AddDate(0, 0, 1)):
			summary.DueToday++
			summary.DueThisWeek++
			summary.DueThisMonth++
		case u.NextReviewAt.Before(today.AddDate(0, 0, 7)):
			summary.DueThisWeek++
			summary.DueThisMonth++
		case u.NextReviewAt.Before(today.AddDate(0, 0, 30)):
			summary.DueThisMonth++
		}
	}

	return &ScheduleReport{Schedule: forecast, Summary: summary}, nil
}

// OptimizeReport pairs a forecast with rebalancing proposals. Nothing is
// rescheduled; callers decide whether to act on the moves.
type OptimizeReport struct {
	Schedule     []leitner.DayLoad    `json:"schedule"`
	Optimization leitner.Optimization `json:"optimization"`
}

// Optimize forecasts the load and flags days above maxDaily, proposing
// moves into quieter earlier days.
func (s *Service) Optimize(ctx context.Context, userID int64, days, maxDaily int, subjectID string) (*OptimizeReport, error) {
	if days < 0 || maxDaily < 0 {
		return nil, fmt.Errorf("%w: negative days or maxDaily", ErrValidation)
	}
	if days == 0 {
		days = 7
	}
	if maxDaily == 0 {
		maxDaily = 50
	}

	upcoming, err := s.pendingUpcoming(ctx, userID, subjectID)
	if err != nil {
		return nil, err
	}
	forecast := leitner.ForecastLoad(upcoming, days, s.Nower.Now())
	return &OptimizeReport{
		Schedule:     forecast,
		Optimization: leitner.OptimizeForecast(forecast, maxDaily),
	}, nil
}

// HistoryItem is one completed review.
type HistoryItem struct {
	ID               string    `json:"id"`
	QuestionID       string    `json:"questionId"`
	Box              int       `json:"box"`
	IsCorrect        bool      `json:"isCorrect"`
	EaseFactor       float64   `json:"easeFactor"`
	IntervalDays     int       `json:"intervalDays"`
	TimeSpentSeconds int       `json:"timeSpentSeconds"`
	Note             string    `json:"note,omitempty"`
	ReviewedAt       time.Time `json:"reviewedAt"`
}

// HistorySummary is the correct-rate rollup over the full reviewed set.
type HistorySummary struct {
	TotalReviews int     `json:"totalReviews"`
	CorrectRate  float64 `json:"correctRate"`
}

// History is one page of completed reviews, newest first.
type History struct {
	Items   []HistoryItem  `json:"items"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	Summary HistorySummary `json:"summary"`
}

// History pages through reviewed records, newest first.
func (s *Service) History(ctx context.Context, userID int64, page, limit int) (*History, error) {
	if page < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: negative page or limit", ErrValidation)
	}
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = 20
	}

	filter := stores.ReviewFilter{UserID: userID, Status: stores.StatusReviewed}
	rows, err := s.Store.ListReviews(ctx, filter, stores.OrderReviewedDesc, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	total, err := s.Store.CountReviews(ctx, filter)
	if err != nil {
		return nil, err
	}
	correct := true
	correctCount, err := s.Store.CountReviews(ctx, stores.ReviewFilter{
		UserID: userID, Status: stores.StatusReviewed, IsCorrect: &correct,
	})
	if err != nil {
		return nil, err
	}

	items := make([]HistoryItem, 0, len(rows))
	for _, r := range rows {
		isCorrect := r.IsCorrect != nil && *r.IsCorrect
		reviewedAt := r.CreatedAt
		if r.ReviewedAt != nil {
			reviewedAt = *r.ReviewedAt
		}
		items = append(items, HistoryItem{
			ID:               r.ID,
			QuestionID:       r.QuestionID,
			Box:              r.Box,
			IsCorrect:        isCorrect,
			EaseFactor:       r.EaseFactor,
			IntervalDays:     r.IntervalDays,
			TimeSpentSeconds: r.TimeSpentSeconds,
			Note:             r.Note,
			ReviewedAt:       reviewedAt,
		})
	}

	rate := 0.0
	if total > 0 {
		rate = round2(float64(correctCount) / float64(total) * 100)
	}

	return &History{
		Items:   items,
		Total:   total,
		Page:    page,
		Summary: HistorySummary{TotalReviews: total, CorrectRate: rate},
	}, nil
}
