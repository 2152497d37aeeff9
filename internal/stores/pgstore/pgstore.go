// Package pgstore is the Postgres-backed review record store.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mistakebook/review_server/internal/stores"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so the same query
// code runs inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Store implements stores.Store on Postgres.
type Store struct {
	db   DBTX
	pool *pgxpool.Pool // nil when this store is a transactional view
}

var _ stores.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{db: pool, pool: pool}
}

// WithTx runs fn against a transactional view. A nested call reuses the
// already-open transaction.
func (s *Store) WithTx(ctx context.Context, fn func(stores.Store) error) error {
	if s.pool == nil {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const reviewColumns = `r.id, r.user_id, r.question_id, r.box, r.next_review_at,
	r.interval_days, r.ease_factor, r.status, r.is_correct, r.reviewed_at,
	r.time_spent_seconds, r.note, r.previous_review_id, r.created_at`

func scanReview(row pgx.Row) (*stores.Review, error) {
	r := &stores.Review{}
	var isCorrect pgtype.Bool
	var reviewedAt pgtype.Timestamptz
	var previous pgtype.Text
	var status string
	err := row.Scan(&r.ID, &r.UserID, &r.QuestionID, &r.Box, &r.NextReviewAt,
		&r.IntervalDays, &r.EaseFactor, &status, &isCorrect, &reviewedAt,
		&r.TimeSpentSeconds, &r.Note, &previous, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Status = stores.Status(status)
	if isCorrect.Valid {
		v := isCorrect.Bool
		r.IsCorrect = &v
	}
	if reviewedAt.Valid {
		v := reviewedAt.Time
		r.ReviewedAt = &v
	}
	if previous.Valid {
		r.PreviousReviewID = previous.String
	}
	return r, nil
}

func toNullableBool(b *bool) pgtype.Bool {
	if b == nil {
		return pgtype.Bool{}
	}
	return pgtype.Bool{Bool: *b, Valid: true}
}

func toNullableText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toNullableTime(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func (s *Store) InsertReview(ctx context.Context, r *stores.Review) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO reviews (id, user_id, question_id, box, next_review_at,
			interval_days, ease_factor, status, is_correct, reviewed_at,
			time_spent_seconds, note, previous_review_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		r.ID, r.UserID, r.QuestionID, r.Box, r.NextReviewAt,
		r.IntervalDays, r.EaseFactor, string(r.Status), toNullableBool(r.IsCorrect),
		toNullableTime(r.ReviewedAt),
		r.TimeSpentSeconds, r.Note, toNullableText(r.PreviousReviewID), r.CreatedAt)
	return err
}

func (s *Store) GetReview(ctx context.Context, userID int64, id string) (*stores.Review, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews r WHERE r.id = $1 AND r.user_id = $2`,
		id, userID)
	r, err := scanReview(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, stores.ErrNotFound
	}
	return r, err
}

func (s *Store) GetPendingReview(ctx context.Context, userID int64, questionID string) (*stores.Review, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews r
		 WHERE r.user_id = $1 AND r.question_id = $2 AND r.status = $3`,
		userID, questionID, string(stores.StatusPending))
	r, err := scanReview(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, stores.ErrNotFound
	}
	return r, err
}

func (s *Store) ListReviews(ctx context.Context, f stores.ReviewFilter, order stores.Order, limit, offset int) ([]*stores.Review, error) {
	where, args, joinQuestions := whereReviews(f)

	query := `SELECT ` + reviewColumns + ` FROM reviews r`
	if joinQuestions {
		query += ` JOIN questions q ON q.id = r.question_id`
	}
	query += where + orderClause(order)
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*stores.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (s *Store) CountReviews(ctx context.Context, f stores.ReviewFilter) (int, error) {
	where, args, joinQuestions := whereReviews(f)

	query := `SELECT count(*) FROM reviews r`
	if joinQuestions {
		query += ` JOIN questions q ON q.id = r.question_id`
	}
	query += where

	var count int
	if err := s.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateReview writes the full row, but only if the stored status still
// matches expect. A concurrent writer that already transitioned the row
// surfaces as ErrConflict.
func (s *Store) UpdateReview(ctx context.Context, r *stores.Review, expect stores.Status) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE reviews SET box = $1, next_review_at = $2, interval_days = $3,
			ease_factor = $4, status = $5, is_correct = $6, reviewed_at = $7,
			time_spent_seconds = $8, note = $9
		WHERE id = $10 AND user_id = $11 AND status = $12`,
		r.Box, r.NextReviewAt, r.IntervalDays,
		r.EaseFactor, string(r.Status), toNullableBool(r.IsCorrect),
		toNullableTime(r.ReviewedAt),
		r.TimeSpentSeconds, r.Note,
		r.ID, r.UserID, string(expect))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish "gone" from "status moved underneath us".
		if _, err := s.GetReview(ctx, r.UserID, r.ID); err != nil {
			return err
		}
		return stores.ErrConflict
	}
	return nil
}

func (s *Store) DeleteReview(ctx context.Context, userID int64, id string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM reviews WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return stores.ErrNotFound
	}
	return nil
}

func (s *Store) GetQuestion(ctx context.Context, id string) (*stores.Question, error) {
	q := &stores.Question{}
	var subject pgtype.Text
	err := s.db.QueryRow(ctx,
		`SELECT id, subject_id FROM questions WHERE id = $1`, id).
		Scan(&q.ID, &subject)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, stores.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if subject.Valid {
		q.SubjectID = subject.String
	}
	return q, nil
}
