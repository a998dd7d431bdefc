package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// attemptRepo implements AttemptRepo. It only ever inserts.
type attemptRepo struct {
	b   *sqlBuilder
	seq *sequenceCounter
}

func (r *attemptRepo) Append(ctx context.Context, a *Attempt) error {
	seq, err := r.seq.Next(ctx, r.b.q)
	if err != nil {
		return err
	}
	a.ID = newID()
	a.Sequence = seq
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	ins := r.b.stmt().Insert(quizAttemptsTable.Name).
		Columns("id", "sequence", "student_id", "question_id", "concept_id", "selected_answer",
			"is_correct", "response_time_ms", "confidence", "created_at").
		Values(a.ID, a.Sequence, a.StudentID, a.QuestionID, nullString(a.ConceptID), a.SelectedAnswer,
			a.IsCorrect, nullInt(a.ResponseTimeMs), nullInt(a.Confidence), a.CreatedAt)
	if _, err := r.b.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) Summary(ctx context.Context, studentID, conceptID string) (AttemptSummary, error) {
	var sum AttemptSummary
	sel := r.b.stmt().Select("is_correct").
		From(r.b.stmt().Table(quizAttemptsTable.Name)).
		Where(entsql.And(entsql.EQ("student_id", studentID), entsql.EQ("concept_id", conceptID)))
	err := r.b.each(ctx, sel, func(rows *sql.Rows) error {
		var ok bool
		if err := rows.Scan(&ok); err != nil {
			return err
		}
		sum.Total++
		if ok {
			sum.Correct++
		}
		return nil
	})
	if err != nil {
		return AttemptSummary{}, fmt.Errorf("summarize attempts: %w", err)
	}
	return sum, nil
}

func (r *attemptRepo) List(ctx context.Context, studentID, conceptID string) ([]Attempt, error) {
	sel := r.b.stmt().Select("id", "sequence", "student_id", "question_id", "concept_id", "selected_answer",
		"is_correct", "response_time_ms", "confidence", "created_at").
		From(r.b.stmt().Table(quizAttemptsTable.Name)).
		Where(entsql.EQ("student_id", studentID)).
		OrderBy("sequence")
	if conceptID != "" {
		sel.Where(entsql.EQ("concept_id", conceptID))
	}

	var out []Attempt
	err := r.b.each(ctx, sel, func(rows *sql.Rows) error {
		var (
			a          Attempt
			concept    sql.NullString
			respTime   sql.NullInt64
			confidence sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.Sequence, &a.StudentID, &a.QuestionID, &concept, &a.SelectedAnswer,
			&a.IsCorrect, &respTime, &confidence, &a.CreatedAt); err != nil {
			return err
		}
		a.ConceptID = concept.String
		a.ResponseTimeMs = intPtr(respTime)
		a.Confidence = intPtr(confidence)
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return out, nil
}
