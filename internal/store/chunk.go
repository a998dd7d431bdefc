package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// chunkRepo implements ChunkRepo.
type chunkRepo struct {
	b *sqlBuilder
}

func (r *chunkRepo) Append(ctx context.Context, chunks []Chunk) ([]Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	next, err := r.nextOrdinal(ctx, chunks[0].CourseID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := make([]Chunk, len(chunks))
	ins := r.b.stmt().Insert(chunksTable.Name).
		Columns("id", "course_id", "ordinal", "text", "source_name", "embedding", "created_at")
	for i, c := range chunks {
		if c.CourseID != chunks[0].CourseID {
			return nil, fmt.Errorf("append chunks: mixed courses %q and %q", chunks[0].CourseID, c.CourseID)
		}
		c.ID = newID()
		c.Ordinal = next + i
		c.CreatedAt = now
		var emb sql.NullString
		if c.Embedding != nil {
			s, err := marshalJSON(c.Embedding)
			if err != nil {
				return nil, err
			}
			emb = sql.NullString{String: s, Valid: true}
		}
		ins.Values(c.ID, c.CourseID, c.Ordinal, c.Text, c.SourceName, emb, c.CreatedAt)
		out[i] = c
	}
	if _, err := r.b.exec(ctx, ins); err != nil {
		return nil, fmt.Errorf("insert chunks: %w", err)
	}
	return out, nil
}

func (r *chunkRepo) nextOrdinal(ctx context.Context, courseID string) (int, error) {
	sel := r.b.stmt().Select("ordinal").
		From(r.b.stmt().Table(chunksTable.Name)).
		Where(entsql.EQ("course_id", courseID)).
		OrderBy(entsql.Desc("ordinal")).
		Limit(1)
	next := 0
	err := r.b.each(ctx, sel, func(rows *sql.Rows) error {
		var n int
		if err := rows.Scan(&n); err != nil {
			return err
		}
		next = n + 1
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("max chunk ordinal: %w", err)
	}
	return next, nil
}

func (r *chunkRepo) ListByCourse(ctx context.Context, courseID string) ([]Chunk, error) {
	sel := r.b.stmt().Select("id", "course_id", "ordinal", "text", "source_name", "embedding", "created_at").
		From(r.b.stmt().Table(chunksTable.Name)).
		Where(entsql.EQ("course_id", courseID)).
		OrderBy("ordinal")

	var out []Chunk
	err := r.b.each(ctx, sel, func(rows *sql.Rows) error {
		var (
			c   Chunk
			emb sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.CourseID, &c.Ordinal, &c.Text, &c.SourceName, &emb, &c.CreatedAt); err != nil {
			return err
		}
		if emb.Valid && emb.String != "" {
			if err := json.Unmarshal([]byte(emb.String), &c.Embedding); err != nil {
				return fmt.Errorf("decode embedding for chunk %s: %w", c.ID, err)
			}
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	return out, nil
}
