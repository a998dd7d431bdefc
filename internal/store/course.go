package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

// courseRepo implements CourseRepo.
type courseRepo struct {
	b *sqlBuilder
}

func (r *courseRepo) Ensure(ctx context.Context, id, name string) (*Course, error) {
	if id == "" {
		id = newID()
	}
	if name == "" {
		name = id
	}
	ins := r.b.stmt().Insert(coursesTable.Name).
		Columns("id", "name", "created_at").
		Values(id, name, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing())
	if _, err := r.b.exec(ctx, ins); err != nil {
		return nil, fmt.Errorf("ensure course: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *courseRepo) Get(ctx context.Context, id string) (*Course, error) {
	sel := r.b.stmt().Select("id", "name", "created_at").
		From(r.b.stmt().Table(coursesTable.Name)).
		Where(entsql.EQ("id", id))
	courses, err := r.query(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, fmt.Errorf("course %q: %w", id, ErrNotFound)
	}
	return &courses[0], nil
}

func (r *courseRepo) List(ctx context.Context) ([]Course, error) {
	sel := r.b.stmt().Select("id", "name", "created_at").
		From(r.b.stmt().Table(coursesTable.Name)).
		OrderBy("name")
	return r.query(ctx, sel)
}

func (r *courseRepo) query(ctx context.Context, sel *entsql.Selector) ([]Course, error) {
	var out []Course
	err := r.b.each(ctx, sel, func(rows *sql.Rows) error {
		var c Course
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	return out, nil
}
