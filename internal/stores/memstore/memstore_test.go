package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/mistakebook/review_server/internal/stores"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func seedReview(id string, box int, due time.Time) *stores.Review {
	return &stores.Review{
		ID: id, UserID: 1, QuestionID: "q-" + id, Box: box,
		NextReviewAt: due, IntervalDays: 1, EaseFactor: 2.5,
		Status: stores.StatusPending, CreatedAt: t0,
	}
}

func TestGetReviewScopedToUser(t *testing.T) {
	is := is.New(t)
	s := New()
	ctx := context.Background()

	is.NoErr(s.InsertReview(ctx, seedReview("r1", 1, t0)))

	_, err := s.GetReview(ctx, 1, "r1")
	is.NoErr(err)

	_, err = s.GetReview(ctx, 2, "r1")
	is.True(errors.Is(err, stores.ErrNotFound))
}

func TestUpdateReviewOptimisticCheck(t *testing.T) {
	is := is.New(t)
	s := New()
	ctx := context.Background()

	r := seedReview("r1", 1, t0)
	is.NoErr(s.InsertReview(ctx, r))

	r.Status = stores.StatusReviewed
	is.NoErr(s.UpdateReview(ctx, r, stores.StatusPending))

	// A second writer expecting pending loses the race.
	r2 := *r
	r2.Status = stores.StatusSkipped
	err := s.UpdateReview(ctx, &r2, stores.StatusPending)
	is.True(errors.Is(err, stores.ErrConflict))
}

func TestListReviewsFiltersAndOrder(t *testing.T) {
	is := is.New(t)
	s := New()
	ctx := context.Background()

	s.AddQuestion(stores.Question{ID: "q-r1", SubjectID: "math"})
	s.AddQuestion(stores.Question{ID: "q-r2", SubjectID: "physics"})
	s.AddQuestion(stores.Question{ID: "q-r3", SubjectID: "math"})

	is.NoErr(s.InsertReview(ctx, seedReview("r1", 2, t0.Add(time.Hour))))
	is.NoErr(s.InsertReview(ctx, seedReview("r2", 1, t0.Add(time.Hour))))
	is.NoErr(s.InsertReview(ctx, seedReview("r3", 1, t0.Add(3*time.Hour))))

	due := t0.Add(2 * time.Hour)
	rows, err := s.ListReviews(ctx, stores.ReviewFilter{
		UserID: 1, Status: stores.StatusPending, DueBefore: &due,
	}, stores.OrderDueAsc, 0, 0)
	is.NoErr(err)
	is.Equal(len(rows), 2)
	is.Equal(rows[0].ID, "r2") // box 1 before box 2 at the same due time

	rows, err = s.ListReviews(ctx, stores.ReviewFilter{
		UserID: 1, SubjectID: "math",
	}, stores.OrderDueAsc, 0, 0)
	is.NoErr(err)
	is.Equal(len(rows), 2)

	count, err := s.CountReviews(ctx, stores.ReviewFilter{UserID: 1, Box: 1})
	is.NoErr(err)
	is.Equal(count, 2)
}

func TestDeleteReview(t *testing.T) {
	is := is.New(t)
	s := New()
	ctx := context.Background()

	is.NoErr(s.InsertReview(ctx, seedReview("r1", 1, t0)))
	is.NoErr(s.DeleteReview(ctx, 1, "r1"))
	is.True(errors.Is(s.DeleteReview(ctx, 1, "r1"), stores.ErrNotFound))
}

func TestWithTxSerializes(t *testing.T) {
	is := is.New(t)
	s := New()
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx stores.Store) error {
		if err := tx.InsertReview(ctx, seedReview("r1", 1, t0)); err != nil {
			return err
		}
		// Nested transactions reuse the outer one.
		return tx.WithTx(ctx, func(inner stores.Store) error {
			return inner.InsertReview(ctx, seedReview("r2", 1, t0))
		})
	})
	is.NoErr(err)

	count, err := s.CountReviews(ctx, stores.ReviewFilter{UserID: 1})
	is.NoErr(err)
	is.Equal(count, 2)
}
