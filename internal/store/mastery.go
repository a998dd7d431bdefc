package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var masteryColumns = []string{
	"id", "student_id", "concept_id", "score", "accuracy", "exposure_count",
	"confidence", "stability", "last_reviewed", "next_review_due",
}

// masteryRepo implements MasteryRepo.
type masteryRepo struct {
	b *sqlBuilder
}

func (r *masteryRepo) GetForUpdate(ctx context.Context, studentID, conceptID string) (*MasteryScore, error) {
	sel := r.selectScores().
		Where(entsql.And(entsql.EQ("student_id", studentID), entsql.EQ("concept_id", conceptID)))
	scores, err := r.query(ctx, r.b.forUpdate(sel))
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("mastery %s/%s: %w", studentID, conceptID, ErrNotFound)
	}
	return &scores[0], nil
}

// Save inserts m when it has no id yet and updates it otherwise.
func (r *masteryRepo) Save(ctx context.Context, m *MasteryScore) error {
	if m.ID == "" {
		m.ID = newID()
		ins := r.b.stmt().Insert(masteryScoresTable.Name).
			Columns(masteryColumns...).
			Values(m.ID, m.StudentID, m.ConceptID, m.Score, m.Accuracy, m.ExposureCount,
				m.Confidence, m.Stability, nullTime(m.LastReviewed), nullTime(m.NextReviewDue))
		if _, err := r.b.exec(ctx, ins); err != nil {
			m.ID = ""
			return fmt.Errorf("insert mastery: %w", err)
		}
		return nil
	}

	upd := r.b.stmt().Update(masteryScoresTable.Name).
		Set("score", m.Score).
		Set("accuracy", m.Accuracy).
		Set("exposure_count", m.ExposureCount).
		Set("confidence", m.Confidence).
		Set("stability", m.Stability).
		Set("last_reviewed", nullTime(m.LastReviewed)).
		Set("next_review_due", nullTime(m.NextReviewDue)).
		Where(entsql.EQ("id", m.ID))
	if _, err := r.b.exec(ctx, upd); err != nil {
		return fmt.Errorf("update mastery: %w", err)
	}
	return nil
}

// ListByStudent returns the student's rows, restricted to conceptIDs when
// it is non-nil.
func (r *masteryRepo) ListByStudent(ctx context.Context, studentID string, conceptIDs []string) ([]MasteryScore, error) {
	if conceptIDs != nil && len(conceptIDs) == 0 {
		return nil, nil
	}
	sel := r.selectScores().Where(entsql.EQ("student_id", studentID))
	if conceptIDs != nil {
		sel.Where(entsql.In("concept_id", anyStrings(conceptIDs)...))
	}
	return r.query(ctx, sel.OrderBy("score", "concept_id"))
}

func (r *masteryRepo) selectScores() *entsql.Selector {
	return r.b.stmt().Select(masteryColumns...).From(r.b.stmt().Table(masteryScoresTable.Name))
}

func (r *masteryRepo) query(ctx context.Context, sel *entsql.Selector) ([]MasteryScore, error) {
	var out []MasteryScore
	err := r.b.each(ctx, sel, func(rows *sql.Rows) error {
		var (
			m        MasteryScore
			reviewed sql.NullTime
			due      sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.StudentID, &m.ConceptID, &m.Score, &m.Accuracy, &m.ExposureCount,
			&m.Confidence, &m.Stability, &reviewed, &due); err != nil {
			return err
		}
		if reviewed.Valid {
			m.LastReviewed = reviewed.Time.UTC()
		}
		if due.Valid {
			m.NextReviewDue = due.Time.UTC()
		}
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query mastery: %w", err)
	}
	return out, nil
}
