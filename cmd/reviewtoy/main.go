package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mistakebook/review_server/internal/leitner"
	"github.com/mistakebook/review_server/internal/reviewqueue"
	"github.com/mistakebook/review_server/internal/stores"
	"github.com/mistakebook/review_server/internal/stores/memstore"
)

type warpNower struct {
	now time.Time
}

func (w *warpNower) Now() time.Time { return w.now }

// Some experimentation code to watch a question walk through the boxes.
func main() {
	ctx := context.Background()

	store := memstore.New()
	store.AddQuestion(stores.Question{ID: "q1", SubjectID: "demo"})

	queue := reviewqueue.NewService(store)
	nower := &warpNower{now: time.Now()}
	queue.Nower = nower

	review, err := queue.Enqueue(ctx, 1, "q1", 0)
	if err != nil {
		panic(err)
	}
	fmt.Println("enqueued in box", review.Box, "due", review.NextReviewAt)

	steps := []struct {
		result     leitner.Result
		difficulty leitner.Difficulty
	}{
		{leitner.Correct, leitner.Medium},
		{leitner.Correct, leitner.Easy},
		{leitner.Correct, leitner.Hard},
		{leitner.Forgotten, 0},
		{leitner.Correct, leitner.Medium},
	}

	reviewID := review.ID
	for _, step := range steps {
		// Jump to the moment the review comes due.
		cur, err := store.GetReview(ctx, 1, reviewID)
		if err != nil {
			panic(err)
		}
		nower.now = cur.NextReviewAt

		outcome, err := queue.SubmitResult(ctx, 1, reviewID, step.result, step.difficulty, 20, "")
		if err != nil {
			panic(err)
		}
		fmt.Println("----")
		fmt.Println("result", step.result, "difficulty", step.difficulty)
		fmt.Println("box", outcome.PreviousBox, "->", outcome.NewBox,
			"interval", outcome.IntervalDays, "ease", outcome.EaseFactor)
		fmt.Println("next due", outcome.NextReviewAt)
		reviewID = outcome.ReviewID
	}

	stats, err := queue.Statistics(ctx, 1)
	if err != nil {
		panic(err)
	}
	fmt.Println("----")
	fmt.Println("total reviews", stats.TotalReviews, "correct rate", stats.CorrectRate)
}
