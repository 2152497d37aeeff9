// Package stores defines the persistence contract for review records and
// question lookups, shared by the Postgres implementation and the
// in-memory one used in tests.
package stores

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrNotFound means the row does not exist or is not visible to the user.
	ErrNotFound = errors.New("stores: not found")
	// ErrConflict means an optimistic status check failed: the row was
	// concurrently transitioned out of the expected status.
	ErrConflict = errors.New("stores: status conflict")
)

// Status is the lifecycle state of a review record. A record is pending
// until it is reviewed or skipped; both of those are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed"
	StatusSkipped  Status = "skipped"
)

// Review is one attempt in a question's review chain. For a given
// (user, question) pair at most one row is pending at any time; the
// chain is linked explicitly through PreviousReviewID.
type Review struct {
	ID               string
	UserID           int64
	QuestionID       string
	Box              int
	NextReviewAt     time.Time
	IntervalDays     int
	EaseFactor       float64
	Status           Status
	IsCorrect        *bool      // set only once Status is reviewed
	ReviewedAt       *time.Time // set only once Status is reviewed
	TimeSpentSeconds int
	Note             string
	PreviousReviewID string // empty for the first record in a chain
	CreatedAt        time.Time
}

// Question is the slice of a question the scheduler cares about: that it
// exists, and which subject it belongs to (for filtering). Content is
// owned elsewhere.
type Question struct {
	ID        string
	SubjectID string
}

// ReviewFilter selects review rows. Zero-valued fields are ignored.
type ReviewFilter struct {
	UserID       int64
	QuestionID   string
	SubjectID    string // joins against the owning question
	Status       Status
	Box          int
	DueBefore     *time.Time // NextReviewAt <= DueBefore
	DueAfter      *time.Time // NextReviewAt > DueAfter
	ReviewedAfter *time.Time // ReviewedAt >= ReviewedAfter
	IsCorrect     *bool
}

// Order is the row ordering for ListReviews.
type Order int

const (
	// OrderDueAsc sorts earliest-due first, then most-urgent box.
	OrderDueAsc Order = iota
	// OrderReviewedDesc sorts most-recently-reviewed first.
	OrderReviewedDesc
)

// Store is the persistence contract the review queue service depends on.
type Store interface {
	// WithTx runs fn against a transactional view of the store. If fn
	// returns an error the transaction is rolled back.
	WithTx(ctx context.Context, fn func(Store) error) error

	InsertReview(ctx context.Context, r *Review) error
	// GetReview returns ErrNotFound when the row is absent or owned by a
	// different user.
	GetReview(ctx context.Context, userID int64, id string) (*Review, error)
	// GetPendingReview returns the single pending row for a question, or
	// ErrNotFound.
	GetPendingReview(ctx context.Context, userID int64, questionID string) (*Review, error)
	ListReviews(ctx context.Context, f ReviewFilter, order Order, limit, offset int) ([]*Review, error)
	CountReviews(ctx context.Context, f ReviewFilter) (int, error)
	// UpdateReview writes the full row, guarded by an optimistic check
	// that the stored status is still expect. Returns ErrConflict if a
	// concurrent writer got there first.
	UpdateReview(ctx context.Context, r *Review, expect Status) error
	DeleteReview(ctx context.Context, userID int64, id string) error

	GetQuestion(ctx context.Context, id string) (*Question, error)
}
