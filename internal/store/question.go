package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var questionColumns = []string{
	"id", "course_id", "concept_id", "question_type", "question_text", "options",
	"correct_answer", "explanation", "difficulty", "bloom_level", "created_at",
}

// questionRepo implements QuestionRepo.
type questionRepo struct {
	b *sqlBuilder
}

func (r *questionRepo) Create(ctx context.Context, q *Question) error {
	if q.ID == "" {
		q.ID = newID()
	}
	if q.QuestionType == "" {
		q.QuestionType = "mcq"
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	opts, err := marshalJSON(q.Options)
	if err != nil {
		return err
	}
	ins := r.b.stmt().Insert(quizQuestionsTable.Name).
		Columns(questionColumns...).
		Values(q.ID, q.CourseID, nullString(q.ConceptID), q.QuestionType, q.Text, opts,
			q.CorrectAnswer, q.Explanation, q.Difficulty, q.BloomLevel, q.CreatedAt)
	if _, err := r.b.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (r *questionRepo) Get(ctx context.Context, id string) (*Question, error) {
	qs, err := r.ListByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("question %q: %w", id, ErrNotFound)
	}
	return &qs[0], nil
}

func (r *questionRepo) ListByIDs(ctx context.Context, ids []string) ([]Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sel := r.b.stmt().Select(questionColumns...).
		From(r.b.stmt().Table(quizQuestionsTable.Name)).
		Where(entsql.In("id", anyStrings(ids)...))

	var out []Question
	err := r.b.each(ctx, sel, func(rows *sql.Rows) error {
		var (
			q         Question
			conceptID sql.NullString
			opts      string
		)
		if err := rows.Scan(&q.ID, &q.CourseID, &conceptID, &q.QuestionType, &q.Text, &opts,
			&q.CorrectAnswer, &q.Explanation, &q.Difficulty, &q.BloomLevel, &q.CreatedAt); err != nil {
			return err
		}
		q.ConceptID = conceptID.String
		if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
			return fmt.Errorf("decode options for question %s: %w", q.ID, err)
		}
		out = append(out, q)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return out, nil
}
