package reviewqueue

import (
	"context"
	"fmt"

	"github.com/lithammer/shortuuid/v4"

	"github.com/mistakebook/review_server/internal/stores"
)

// Session is an ephemeral batch of reviews for one sitting. Only its
// constituent review records are persisted; the session itself lives in
// the response.
type Session struct {
	ID           string    `json:"sessionId"`
	Items        []DueItem `json:"items"`
	TotalCount   int       `json:"totalCount"`
	CurrentIndex int       `json:"currentIndex"`
}

// StartSession assembles up to count reviews. Everything due now goes in
// first. When includeUpcoming is set and the due queue came up short, the
// soonest not-yet-due pending reviews fill the remainder, skipping
// questions already in the session.
func (s *Service) StartSession(ctx context.Context, userID int64, count int, subjectID string, includeUpcoming bool) (*Session, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count", ErrValidation)
	}
	if count == 0 {
		count = defaultSessionCount
	}

	due, err := s.DueQueue(ctx, userID, count, subjectID, 0)
	if err != nil {
		return nil, err
	}
	items := due.Items

	if includeUpcoming && len(items) < count {
		now := s.Nower.Now()
		upcoming, err := s.Store.ListReviews(ctx, stores.ReviewFilter{
			UserID:    userID,
			Status:    stores.StatusPending,
			SubjectID: subjectID,
			DueAfter:  &now,
		}, stores.OrderDueAsc, count-len(items), 0)
		if err != nil {
			return nil, err
		}

		seen := map[string]bool{}
		for _, item := range items {
			seen[item.QuestionID] = true
		}
		for _, r := range upcoming {
			if seen[r.QuestionID] {
				continue
			}
			item, err := s.dueItem(ctx, r, now)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			seen[r.QuestionID] = true
		}
	}

	return &Session{
		ID:           "session_" + shortuuid.New(),
		Items:        items,
		TotalCount:   len(items),
		CurrentIndex: 0,
	}, nil
}
