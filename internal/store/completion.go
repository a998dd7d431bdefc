package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// completionRepo implements CompletionRepo.
type completionRepo struct {
	b   *sqlBuilder
	seq *sequenceCounter
}

func (r *completionRepo) Append(ctx context.Context, c *Completion) error {
	switch c.Kind {
	case CompletionSkimmed:
		if c.QuizScore != nil || c.Passed {
			return fmt.Errorf("skimmed completion cannot carry a score")
		}
	case CompletionAttempted:
		if c.QuizScore == nil {
			return fmt.Errorf("attempted completion requires a score")
		}
	default:
		return fmt.Errorf("unknown completion kind %q", c.Kind)
	}

	seq, err := r.seq.Next(ctx, r.b.q)
	if err != nil {
		return err
	}
	c.ID = newID()
	c.Sequence = seq
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now().UTC()
	}
	var score sql.NullFloat64
	if c.QuizScore != nil {
		score = sql.NullFloat64{Float64: *c.QuizScore, Valid: true}
	}
	ins := r.b.stmt().Insert(conceptCompletionsTable.Name).
		Columns("id", "student_id", "concept_id", "kind", "quiz_score", "passed", "completed_at", "sequence").
		Values(c.ID, c.StudentID, c.ConceptID, string(c.Kind), score, c.Passed, c.CompletedAt, c.Sequence)
	if _, err := r.b.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert completion: %w", err)
	}
	return nil
}

func (r *completionRepo) Latest(ctx context.Context, studentID string, conceptIDs []string) (map[string]Completion, error) {
	out := make(map[string]Completion)
	if len(conceptIDs) == 0 {
		return out, nil
	}
	sel := r.b.stmt().Select("id", "student_id", "concept_id", "kind", "quiz_score", "passed", "completed_at", "sequence").
		From(r.b.stmt().Table(conceptCompletionsTable.Name)).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.In("concept_id", anyStrings(conceptIDs)...),
		)).
		OrderBy("completed_at", "sequence")

	err := r.b.each(ctx, sel, func(rows *sql.Rows) error {
		var (
			c     Completion
			kind  string
			score sql.NullFloat64
		)
		if err := rows.Scan(&c.ID, &c.StudentID, &c.ConceptID, &kind, &score, &c.Passed, &c.CompletedAt, &c.Sequence); err != nil {
			return err
		}
		c.Kind = CompletionKind(kind)
		if score.Valid {
			v := score.Float64
			c.QuizScore = &v
		}
		// Rows arrive oldest first with insert order breaking timestamp
		// ties, so the last write per concept wins.
		out[c.ConceptID] = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("latest completions: %w", err)
	}
	return out, nil
}
