package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// ErrSelfEdge is returned when an edge would connect a concept to itself.
var ErrSelfEdge = errors.New("concept edge source equals target")

var conceptColumns = []string{"id", "course_id", "name", "description", "importance"}

// conceptRepo implements ConceptRepo.
type conceptRepo struct {
	b *sqlBuilder
}

func (r *conceptRepo) Upsert(ctx context.Context, c Concept) (*Concept, error) {
	sel := r.selectConcepts().
		Where(entsql.And(entsql.EQ("course_id", c.CourseID), entsql.EQ("name", c.Name)))
	existing, err := r.query(ctx, sel)
	if err != nil {
		return nil, err
	}

	if len(existing) > 0 {
		cur := existing[0]
		upd := r.b.stmt().Update(conceptsTable.Name).
			Set("importance", c.Importance).
			Where(entsql.EQ("id", cur.ID))
		cur.Importance = c.Importance
		if c.Description != "" {
			upd.Set("description", c.Description)
			cur.Description = c.Description
		}
		if _, err := r.b.exec(ctx, upd); err != nil {
			return nil, fmt.Errorf("update concept %q: %w", c.Name, err)
		}
		return &cur, nil
	}

	c.ID = newID()
	ins := r.b.stmt().Insert(conceptsTable.Name).
		Columns(conceptColumns...).
		Values(c.ID, c.CourseID, c.Name, c.Description, c.Importance)
	if _, err := r.b.exec(ctx, ins); err != nil {
		return nil, fmt.Errorf("insert concept %q: %w", c.Name, err)
	}
	return &c, nil
}

func (r *conceptRepo) Get(ctx context.Context, id string) (*Concept, error) {
	concepts, err := r.query(ctx, r.selectConcepts().Where(entsql.EQ("id", id)))
	if err != nil {
		return nil, err
	}
	if len(concepts) == 0 {
		return nil, fmt.Errorf("concept %q: %w", id, ErrNotFound)
	}
	return &concepts[0], nil
}

func (r *conceptRepo) ListByCourse(ctx context.Context, courseID string) ([]Concept, error) {
	sel := r.selectConcepts().
		Where(entsql.EQ("course_id", courseID)).
		OrderBy("name")
	return r.query(ctx, sel)
}

func (r *conceptRepo) ListByIDs(ctx context.Context, ids []string) ([]Concept, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sel := r.selectConcepts().
		Where(entsql.In("id", anyStrings(ids)...)).
		OrderBy("name")
	return r.query(ctx, sel)
}

func (r *conceptRepo) AddEdge(ctx context.Context, e ConceptEdge) (bool, error) {
	if e.SourceID == e.TargetID {
		return false, ErrSelfEdge
	}
	if !e.Relation.Valid() {
		return false, fmt.Errorf("unknown relation %q", e.Relation)
	}
	ins := r.b.stmt().Insert(conceptEdgesTable.Name).
		Columns("id", "source_id", "target_id", "relation", "confidence").
		Values(newID(), e.SourceID, e.TargetID, string(e.Relation), e.Confidence).
		OnConflict(entsql.ConflictColumns("source_id", "target_id", "relation"), entsql.DoNothing())
	res, err := r.b.exec(ctx, ins)
	if err != nil {
		return false, fmt.Errorf("insert edge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert edge: %w", err)
	}
	return n > 0, nil
}

// ListEdges returns edges whose source concept belongs to the course. An
// empty relation matches every relation.
func (r *conceptRepo) ListEdges(ctx context.Context, courseID string, relation Relation) ([]ConceptEdge, error) {
	e := r.b.stmt().Table(conceptEdgesTable.Name).As("e")
	c := r.b.stmt().Table(conceptsTable.Name).As("c")
	sel := r.b.stmt().Select(e.C("id"), e.C("source_id"), e.C("target_id"), e.C("relation"), e.C("confidence")).
		From(e).
		Join(c).On(e.C("source_id"), c.C("id")).
		Where(entsql.EQ(c.C("course_id"), courseID)).
		OrderBy(e.C("source_id"), e.C("target_id"))
	if relation != "" {
		sel.Where(entsql.EQ(e.C("relation"), string(relation)))
	}

	var out []ConceptEdge
	err := r.b.each(ctx, sel, func(rows *sql.Rows) error {
		var (
			edge ConceptEdge
			rel  string
		)
		if err := rows.Scan(&edge.ID, &edge.SourceID, &edge.TargetID, &rel, &edge.Confidence); err != nil {
			return err
		}
		edge.Relation = Relation(rel)
		out = append(out, edge)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	return out, nil
}

func (r *conceptRepo) selectConcepts() *entsql.Selector {
	return r.b.stmt().Select(conceptColumns...).From(r.b.stmt().Table(conceptsTable.Name))
}

func (r *conceptRepo) query(ctx context.Context, sel *entsql.Selector) ([]Concept, error) {
	var out []Concept
	err := r.b.each(ctx, sel, func(rows *sql.Rows) error {
		var c Concept
		if err := rows.Scan(&c.ID, &c.CourseID, &c.Name, &c.Description, &c.Importance); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query concepts: %w", err)
	}
	return out, nil
}
