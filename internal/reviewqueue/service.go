// Package reviewqueue owns the review lifecycle: enqueueing missed
// questions, serving the due queue, assembling sessions, applying review
// results and reporting on progress. All operations are scoped to a user.
package reviewqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mistakebook/review_server/internal/leitner"
	"github.com/mistakebook/review_server/internal/stores"
)

const (
	defaultQueueLimit   = 50
	defaultSessionCount = 20
	streakLookback      = 10
)

type nower interface {
	Now() time.Time
}

type RealNower struct{}

func (r RealNower) Now() time.Time {
	return time.Now()
}

// Service is the review queue orchestrator. Store is the single source of
// truth; Nower exists so tests can pin the clock.
type Service struct {
	Store stores.Store
	Nower nower
}

func NewService(store stores.Store) *Service {
	return &Service{Store: store, Nower: RealNower{}}
}

// Enqueue puts a question into the review rotation. If the question
// already has a pending review, that record is reset to box 1 instead of
// creating a duplicate.
func (s *Service) Enqueue(ctx context.Context, userID int64, questionID string, initialBox int) (*stores.Review, error) {
	if questionID == "" {
		return nil, fmt.Errorf("%w: empty question id", ErrValidation)
	}
	if _, err := s.Store.GetQuestion(ctx, questionID); err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return nil, fmt.Errorf("%w: question %s", ErrNotFound, questionID)
		}
		return nil, err
	}

	now := s.Nower.Now()

	existing, err := s.Store.GetPendingReview(ctx, userID, questionID)
	if err == nil {
		sched := leitner.InitialSchedule(leitner.MinBox, now)
		existing.Box = sched.Box
		existing.NextReviewAt = sched.NextReviewAt
		existing.IntervalDays = sched.IntervalDays
		existing.EaseFactor = leitner.DefaultEase
		if err := s.Store.UpdateReview(ctx, existing, stores.StatusPending); err != nil {
			return nil, err
		}
		log.Ctx(ctx).Debug().Str("questionID", questionID).Msg("pending-review-reset")
		return existing, nil
	}
	if !errors.Is(err, stores.ErrNotFound) {
		return nil, err
	}

	if initialBox == 0 {
		initialBox = leitner.MinBox
	}
	sched := leitner.InitialSchedule(initialBox, now)
	review := &stores.Review{
		ID:           uuid.NewString(),
		UserID:       userID,
		QuestionID:   questionID,
		Box:          sched.Box,
		NextReviewAt: sched.NextReviewAt,
		IntervalDays: sched.IntervalDays,
		EaseFactor:   leitner.DefaultEase,
		Status:       stores.StatusPending,
		CreatedAt:    now,
	}
	if err := s.Store.InsertReview(ctx, review); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().Str("questionID", questionID).Int("box", sched.Box).Msg("review-enqueued")
	return review, nil
}

// EnqueueBatch enqueues each question, tolerating per-item failures. It
// never returns an item error: failures only show up in the skipped tally.
func (s *Service) EnqueueBatch(ctx context.Context, userID int64, questionIDs []string, initialBox int) (added, skipped int) {
	for _, qid := range questionIDs {
		if _, err := s.Enqueue(ctx, userID, qid, initialBox); err != nil {
			log.Ctx(ctx).Debug().Err(err).Str("questionID", qid).Msg("batch-enqueue-item-skipped")
			skipped++
			continue
		}
		added++
	}
	return added, skipped
}

// DueItem is one entry in the due queue.
type DueItem struct {
	ReviewID     string    `json:"reviewId"`
	QuestionID   string    `json:"questionId"`
	SubjectID    string    `json:"subjectId,omitempty"`
	Box          int       `json:"box"`
	NextReviewAt time.Time `json:"nextReviewAt"`
	ReviewCount  int       `json:"reviewCount"`
	Priority     float64   `json:"priority"`
}

// DueQueue is the set of reviews currently due.
type DueQueue struct {
	Items   []DueItem `json:"items"`
	Total   int       `json:"total"`
	HasMore bool      `json:"hasMore"`
}

// DueQueue returns up to limit pending reviews whose time has come,
// earliest-due first with lower boxes breaking ties. Priority is the
// advisory score; it does not drive the ordering.
func (s *Service) DueQueue(ctx context.Context, userID int64, limit int, subjectID string, box int) (*DueQueue, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative limit", ErrValidation)
	}
	if limit == 0 {
		limit = defaultQueueLimit
	}
	if box != 0 && (box < leitner.MinBox || box > leitner.MaxBox) {
		return nil, fmt.Errorf("%w: box %d out of range", ErrValidation, box)
	}

	now := s.Nower.Now()
	filter := stores.ReviewFilter{
		UserID:    userID,
		Status:    stores.StatusPending,
		SubjectID: subjectID,
		Box:       box,
		DueBefore: &now,
	}

	rows, err := s.Store.ListReviews(ctx, filter, stores.OrderDueAsc, limit, 0)
	if err != nil {
		return nil, err
	}
	total, err := s.Store.CountReviews(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]DueItem, 0, len(rows))
	for _, r := range rows {
		item, err := s.dueItem(ctx, r, now)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return &DueQueue{Items: items, Total: total, HasMore: total > limit}, nil
}

func (s *Service) dueItem(ctx context.Context, r *stores.Review, now time.Time) (DueItem, error) {
	count, err := s.reviewCount(ctx, r.UserID, r.QuestionID)
	if err != nil {
		return DueItem{}, err
	}
	subjectID := ""
	if q, err := s.Store.GetQuestion(ctx, r.QuestionID); err == nil {
		subjectID = q.SubjectID
	}
	return DueItem{
		ReviewID:     r.ID,
		QuestionID:   r.QuestionID,
		SubjectID:    subjectID,
		Box:          r.Box,
		NextReviewAt: r.NextReviewAt,
		ReviewCount:  count,
		Priority:     leitner.PriorityScore(r.Box, r.NextReviewAt, count, now),
	}, nil
}

func (s *Service) reviewCount(ctx context.Context, userID int64, questionID string) (int, error) {
	return s.Store.CountReviews(ctx, stores.ReviewFilter{
		UserID:     userID,
		QuestionID: questionID,
		Status:     stores.StatusReviewed,
	})
}

// SubmitOutcome reports where a question landed after a review.
type SubmitOutcome struct {
	ReviewID     string    `json:"reviewId"` // the successor pending record
	PreviousBox  int       `json:"previousBox"`
	NewBox       int       `json:"newBox"`
	NextReviewAt time.Time `json:"nextReviewAt"`
	IntervalDays int       `json:"intervalDays"`
	EaseFactor   float64   `json:"easeFactor"`
	StreakDays   int       `json:"streakDays"`
}

// SubmitResult applies a review result: the pending record becomes
// reviewed and exactly one successor pending record is created, in one
// transaction. A record that is no longer pending fails with
// ErrInvalidState, including when a concurrent submit won the race.
func (s *Service) SubmitResult(ctx context.Context, userID int64, reviewID string, result leitner.Result,
	difficulty leitner.Difficulty, timeSpentSeconds int, note string) (*SubmitOutcome, error) {

	if !result.IsValid() {
		return nil, fmt.Errorf("%w: result %d", ErrValidation, int(result))
	}
	if difficulty != 0 && !difficulty.IsValid() {
		return nil, fmt.Errorf("%w: difficulty %d", ErrValidation, int(difficulty))
	}
	if timeSpentSeconds < 0 {
		return nil, fmt.Errorf("%w: negative time spent", ErrValidation)
	}

	now := s.Nower.Now()
	var outcome *SubmitOutcome
	var questionID string

	err := s.Store.WithTx(ctx, func(tx stores.Store) error {
		cur, err := tx.GetReview(ctx, userID, reviewID)
		if err != nil {
			if errors.Is(err, stores.ErrNotFound) {
				return fmt.Errorf("%w: review %s", ErrNotFound, reviewID)
			}
			return err
		}
		if cur.Status != stores.StatusPending {
			return fmt.Errorf("%w: review %s is %s", ErrInvalidState, reviewID, cur.Status)
		}

		previousBox := cur.Box
		sched := leitner.NextSchedule(cur.Box, result, difficulty, cur.EaseFactor, now)

		isCorrect := result == leitner.Correct
		cur.Box = sched.Box
		cur.NextReviewAt = sched.NextReviewAt
		cur.IntervalDays = sched.IntervalDays
		cur.EaseFactor = sched.EaseFactor
		cur.Status = stores.StatusReviewed
		cur.IsCorrect = &isCorrect
		cur.ReviewedAt = &now
		cur.TimeSpentSeconds = timeSpentSeconds
		cur.Note = note

		if err := tx.UpdateReview(ctx, cur, stores.StatusPending); err != nil {
			if errors.Is(err, stores.ErrConflict) {
				return fmt.Errorf("%w: review %s was submitted concurrently", ErrInvalidState, reviewID)
			}
			return err
		}

		successor := &stores.Review{
			ID:               uuid.NewString(),
			UserID:           userID,
			QuestionID:       cur.QuestionID,
			Box:              sched.Box,
			NextReviewAt:     sched.NextReviewAt,
			IntervalDays:     sched.IntervalDays,
			EaseFactor:       sched.EaseFactor,
			Status:           stores.StatusPending,
			PreviousReviewID: cur.ID,
			CreatedAt:        now,
		}
		if err := tx.InsertReview(ctx, successor); err != nil {
			return err
		}

		questionID = cur.QuestionID
		outcome = &SubmitOutcome{
			ReviewID:     successor.ID,
			PreviousBox:  previousBox,
			NewBox:       sched.Box,
			NextReviewAt: sched.NextReviewAt,
			IntervalDays: sched.IntervalDays,
			EaseFactor:   sched.EaseFactor,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	streak, err := s.streakDays(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}
	outcome.StreakDays = streak

	log.Ctx(ctx).Info().Str("reviewID", reviewID).Str("result", result.String()).
		Int("previousBox", outcome.PreviousBox).Int("newBox", outcome.NewBox).
		Time("nextReviewAt", outcome.NextReviewAt).Msg("review-scored")

	return outcome, nil
}

// streakDays counts the most recent consecutive correct reviews of a
// question, scanning newest-first with a bounded lookback.
func (s *Service) streakDays(ctx context.Context, userID int64, questionID string) (int, error) {
	rows, err := s.Store.ListReviews(ctx, stores.ReviewFilter{
		UserID:     userID,
		QuestionID: questionID,
		Status:     stores.StatusReviewed,
	}, stores.OrderReviewedDesc, streakLookback, 0)
	if err != nil {
		return 0, err
	}
	streak := 0
	for _, r := range rows {
		if r.IsCorrect == nil || !*r.IsCorrect {
			break
		}
		streak++
	}
	return streak, nil
}

// Skip pulls a pending review out of rotation. No successor is created;
// the question stays out of scheduling until it is enqueued again.
func (s *Service) Skip(ctx context.Context, userID int64, reviewID string) error {
	cur, err := s.Store.GetReview(ctx, userID, reviewID)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return fmt.Errorf("%w: review %s", ErrNotFound, reviewID)
		}
		return err
	}
	if cur.Status != stores.StatusPending {
		return fmt.Errorf("%w: review %s is %s", ErrInvalidState, reviewID, cur.Status)
	}
	cur.Status = stores.StatusSkipped
	if err := s.Store.UpdateReview(ctx, cur, stores.StatusPending); err != nil {
		if errors.Is(err, stores.ErrConflict) {
			return fmt.Errorf("%w: review %s changed concurrently", ErrInvalidState, reviewID)
		}
		return err
	}
	log.Ctx(ctx).Debug().Str("reviewID", reviewID).Msg("review-skipped")
	return nil
}

// Remove hard-deletes a single review record. Other records in the
// question's chain are untouched.
func (s *Service) Remove(ctx context.Context, userID int64, reviewID string) error {
	if err := s.Store.DeleteReview(ctx, userID, reviewID); err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return fmt.Errorf("%w: review %s", ErrNotFound, reviewID)
		}
		return err
	}
	return nil
}
