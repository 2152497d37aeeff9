package pgstore

import (
	"fmt"
	"strings"

	"github.com/mistakebook/review_server/internal/stores"
)

// whereReviews renders a ReviewFilter into a WHERE clause with numbered
// bind parameters. The reviews table is aliased r; when the filter needs
// the owning question (subject filtering) it also reports that the
// questions join is required.
func whereReviews(f stores.ReviewFilter) (clause string, args []interface{}, joinQuestions bool) {
	conds := []string{}
	add := func(condition string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(condition, len(args)))
	}

	if f.UserID != 0 {
		add("r.user_id = $%d", f.UserID)
	}
	if f.QuestionID != "" {
		add("r.question_id = $%d", f.QuestionID)
	}
	if f.Status != "" {
		add("r.status = $%d", string(f.Status))
	}
	if f.Box != 0 {
		add("r.box = $%d", f.Box)
	}
	if f.DueBefore != nil {
		add("r.next_review_at <= $%d", *f.DueBefore)
	}
	if f.DueAfter != nil {
		add("r.next_review_at > $%d", *f.DueAfter)
	}
	if f.ReviewedAfter != nil {
		add("r.reviewed_at >= $%d", *f.ReviewedAfter)
	}
	if f.IsCorrect != nil {
		add("r.is_correct = $%d", *f.IsCorrect)
	}
	if f.SubjectID != "" {
		joinQuestions = true
		add("q.subject_id = $%d", f.SubjectID)
	}

	if len(conds) == 0 {
		return "", args, joinQuestions
	}
	return " WHERE " + strings.Join(conds, " AND "), args, joinQuestions
}

func orderClause(order stores.Order) string {
	switch order {
	case stores.OrderReviewedDesc:
		return " ORDER BY r.reviewed_at DESC"
	default:
		return " ORDER BY r.next_review_at ASC, r.box ASC"
	}
}
