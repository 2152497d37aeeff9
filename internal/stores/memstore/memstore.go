// Package memstore is an in-memory stores.Store, used in tests and by the
// offline toy. Semantics mirror pgstore, including the optimistic status
// check on update.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mistakebook/review_server/internal/stores"
)

type Store struct {
	mu        sync.RWMutex
	txMu      sync.Mutex
	reviews   map[string]*stores.Review
	questions map[string]*stores.Question
}

var _ stores.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		reviews:   map[string]*stores.Review{},
		questions: map[string]*stores.Question{},
	}
}

// AddQuestion seeds a question row. Question CRUD is owned by another
// subsystem; tests and the toy need a way to make questions exist.
func (s *Store) AddQuestion(q stores.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := q
	s.questions[q.ID] = &cp
}

// WithTx serializes transactional sections against each other. There is
// no rollback: the in-memory store is for tests, which never exercise
// partial failure inside a transaction.
func (s *Store) WithTx(ctx context.Context, fn func(stores.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(&txView{s})
}

// txView marks the store as inside a transaction so nested WithTx calls
// do not deadlock on txMu.
type txView struct{ *Store }

func (t *txView) WithTx(ctx context.Context, fn func(stores.Store) error) error {
	return fn(t)
}

func (s *Store) InsertReview(ctx context.Context, r *stores.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.reviews[r.ID] = &cp
	return nil
}

func (s *Store) GetReview(ctx context.Context, userID int64, id string) (*stores.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[id]
	if !ok || r.UserID != userID {
		return nil, stores.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Store) GetPendingReview(ctx context.Context, userID int64, questionID string) (*stores.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reviews {
		if r.UserID == userID && r.QuestionID == questionID && r.Status == stores.StatusPending {
			cp := *r
			return &cp, nil
		}
	}
	return nil, stores.ErrNotFound
}

func (s *Store) matches(r *stores.Review, f stores.ReviewFilter) bool {
	if f.UserID != 0 && r.UserID != f.UserID {
		return false
	}
	if f.QuestionID != "" && r.QuestionID != f.QuestionID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Box != 0 && r.Box != f.Box {
		return false
	}
	if f.DueBefore != nil && r.NextReviewAt.After(*f.DueBefore) {
		return false
	}
	if f.DueAfter != nil && !r.NextReviewAt.After(*f.DueAfter) {
		return false
	}
	if f.ReviewedAfter != nil && (r.ReviewedAt == nil || r.ReviewedAt.Before(*f.ReviewedAfter)) {
		return false
	}
	if f.IsCorrect != nil && (r.IsCorrect == nil || *r.IsCorrect != *f.IsCorrect) {
		return false
	}
	if f.SubjectID != "" {
		q, ok := s.questions[r.QuestionID]
		if !ok || q.SubjectID != f.SubjectID {
			return false
		}
	}
	return true
}

func (s *Store) ListReviews(ctx context.Context, f stores.ReviewFilter, order stores.Order, limit, offset int) ([]*stores.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*stores.Review
	for _, r := range s.reviews {
		if s.matches(r, f) {
			cp := *r
			out = append(out, &cp)
		}
	}

	switch order {
	case stores.OrderReviewedDesc:
		sort.Slice(out, func(i, j int) bool {
			ti, tj := reviewedOrCreated(out[i]), reviewedOrCreated(out[j])
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
			return out[i].ID > out[j].ID
		})
	default:
		sort.Slice(out, func(i, j int) bool {
			if !out[i].NextReviewAt.Equal(out[j].NextReviewAt) {
				return out[i].NextReviewAt.Before(out[j].NextReviewAt)
			}
			if out[i].Box != out[j].Box {
				return out[i].Box < out[j].Box
			}
			return out[i].ID < out[j].ID
		})
	}

	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func reviewedOrCreated(r *stores.Review) time.Time {
	if r.ReviewedAt != nil {
		return *r.ReviewedAt
	}
	return r.CreatedAt
}

func (s *Store) CountReviews(ctx context.Context, f stores.ReviewFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, r := range s.reviews {
		if s.matches(r, f) {
			count++
		}
	}
	return count, nil
}

func (s *Store) UpdateReview(ctx context.Context, r *stores.Review, expect stores.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.reviews[r.ID]
	if !ok || cur.UserID != r.UserID {
		return stores.ErrNotFound
	}
	if cur.Status != expect {
		return stores.ErrConflict
	}
	cp := *r
	cp.CreatedAt = cur.CreatedAt // immutable
	s.reviews[r.ID] = &cp
	return nil
}

func (s *Store) DeleteReview(ctx context.Context, userID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok || r.UserID != userID {
		return stores.ErrNotFound
	}
	delete(s.reviews, id)
	return nil
}

func (s *Store) GetQuestion(ctx context.Context, id string) (*stores.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, stores.ErrNotFound
	}
	cp := *q
	return &cp, nil
}
