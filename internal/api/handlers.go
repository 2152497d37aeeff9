package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mistakebook/review_server/internal/leitner"
	"github.com/mistakebook/review_server/internal/stores"
)

type EnqueueRequest struct {
	QuestionID string `json:"questionId" validate:"required"`
	InitialBox int    `json:"initialBox" validate:"omitempty,min=1,max=5"`
}

type EnqueueBatchRequest struct {
	QuestionIDs []string `json:"questionIds" validate:"required,min=1,max=500,dive,required"`
	InitialBox  int      `json:"initialBox" validate:"omitempty,min=1,max=5"`
}

type EnqueueBatchResponse struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

type SessionRequest struct {
	Count           int    `json:"count" validate:"omitempty,min=1,max=100"`
	SubjectID       string `json:"subjectId"`
	IncludeUpcoming bool   `json:"includeUpcoming"`
}

type SubmitResultRequest struct {
	Result           leitner.Result     `json:"result"`
	Difficulty       leitner.Difficulty `json:"difficulty"`
	TimeSpentSeconds int                `json:"timeSpentSeconds" validate:"omitempty,min=0"`
	Note             string             `json:"note" validate:"omitempty,max=2000"`
}

// ReviewResponse is the wire shape of a review record.
type ReviewResponse struct {
	ID               string    `json:"id"`
	QuestionID       string    `json:"questionId"`
	Box              int       `json:"box"`
	NextReviewAt     time.Time `json:"nextReviewAt"`
	IntervalDays     int       `json:"intervalDays"`
	EaseFactor       float64   `json:"easeFactor"`
	Status           string    `json:"status"`
	PreviousReviewID string    `json:"previousReviewId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toReviewResponse(r *stores.Review) ReviewResponse {
	return ReviewResponse{
		ID:               r.ID,
		QuestionID:       r.QuestionID,
		Box:              r.Box,
		NextReviewAt:     r.NextReviewAt,
		IntervalDays:     r.IntervalDays,
		EaseFactor:       r.EaseFactor,
		Status:           string(r.Status),
		PreviousReviewID: r.PreviousReviewID,
		CreatedAt:        r.CreatedAt,
	}
}

// EnqueueReview puts a question into the user's review rotation.
// POST /api/v1/reviews
func (s *Service) EnqueueReview(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req EnqueueRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	review, err := s.queue.Enqueue(c.Request().Context(), uid, req.QuestionID, req.InitialBox)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, toReviewResponse(review))
}

// EnqueueBatch enqueues several questions at once. Individual failures
// do not fail the batch.
// POST /api/v1/reviews/batch
func (s *Service) EnqueueBatch(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req EnqueueBatchRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	added, skipped := s.queue.EnqueueBatch(c.Request().Context(), uid, req.QuestionIDs, req.InitialBox)
	return c.JSON(http.StatusOK, EnqueueBatchResponse{Added: added, Skipped: skipped})
}

// GetQueue returns the reviews currently due, earliest first.
// GET /api/v1/reviews/queue?limit=&subjectId=&box=
func (s *Service) GetQueue(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	limit, err := intQueryParam(c, "limit")
	if err != nil {
		return err
	}
	box, err := intQueryParam(c, "box")
	if err != nil {
		return err
	}
	queue, err := s.queue.DueQueue(c.Request().Context(), uid, limit, c.QueryParam("subjectId"), box)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, queue)
}

// StartSession builds a review session from due and optionally upcoming
// reviews.
// POST /api/v1/reviews/session
func (s *Service) StartSession(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req SessionRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	session, err := s.queue.StartSession(c.Request().Context(), uid, req.Count, req.SubjectID, req.IncludeUpcoming)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// SubmitResult scores a pending review and schedules the next one.
// POST /api/v1/reviews/:id/result
func (s *Service) SubmitResult(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req SubmitResultRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	outcome, err := s.queue.SubmitResult(c.Request().Context(), uid, c.Param("id"),
		req.Result, req.Difficulty, req.TimeSpentSeconds, req.Note)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, outcome)
}

// SkipReview pulls a pending review out of rotation.
// POST /api/v1/reviews/:id/skip
func (s *Service) SkipReview(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	if err := s.queue.Skip(c.Request().Context(), uid, c.Param("id")); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveReview deletes a single review record.
// DELETE /api/v1/reviews/:id
func (s *Service) RemoveReview(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	if err := s.queue.Remove(c.Request().Context(), uid, c.Param("id")); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetStatistics returns the user's aggregate review statistics.
// GET /api/v1/reviews/statistics
func (s *Service) GetStatistics(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	stats, err := s.queue.Statistics(c.Request().Context(), uid)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// GetSchedule forecasts the review load over the coming days.
// GET /api/v1/reviews/schedule?days=&subjectId=
func (s *Service) GetSchedule(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	days, err := intQueryParam(c, "days")
	if err != nil {
		return err
	}
	report, err := s.queue.Schedule(c.Request().Context(), uid, days, c.QueryParam("subjectId"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// OptimizeSchedule flags overloaded days and proposes rebalancing moves.
// GET /api/v1/reviews/schedule/optimization?days=&maxDaily=&subjectId=
func (s *Service) OptimizeSchedule(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	days, err := intQueryParam(c, "days")
	if err != nil {
		return err
	}
	maxDaily, err := intQueryParam(c, "maxDaily")
	if err != nil {
		return err
	}
	report, err := s.queue.Optimize(c.Request().Context(), uid, days, maxDaily, c.QueryParam("subjectId"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// GetHistory pages through completed reviews, newest first.
// GET /api/v1/reviews/history?page=&limit=
func (s *Service) GetHistory(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	page, err := intQueryParam(c, "page")
	if err != nil {
		return err
	}
	limit, err := intQueryParam(c, "limit")
	if err != nil {
		return err
	}
	history, err := s.queue.History(c.Request().Context(), uid, page, limit)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, history)
}
