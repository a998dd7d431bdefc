package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlBuilder renders ent SQL builders for one dialect and runs them on a
// querier.
type sqlBuilder struct {
	q       querier
	dialect string
}

func (b *sqlBuilder) stmt() *entsql.DialectBuilder {
	return entsql.Dialect(b.dialect)
}

type queryBuilder interface {
	Query() (string, []any)
}

func (b *sqlBuilder) exec(ctx context.Context, qb queryBuilder) (sql.Result, error) {
	query, args := qb.Query()
	return b.q.ExecContext(ctx, query, args...)
}

// each runs a select and calls scan for every row. Rows are closed before
// each returns, so callers may issue further queries on the same
// transaction afterwards.
func (b *sqlBuilder) each(ctx context.Context, sel *entsql.Selector, scan func(*sql.Rows) error) error {
	query, args := sel.Query()
	rows, err := b.q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// forUpdate adds a row lock on dialects that support one.
func (b *sqlBuilder) forUpdate(sel *entsql.Selector) *entsql.Selector {
	if b.dialect == dialect.Postgres {
		return sel.ForUpdate()
	}
	return sel
}

func anyStrings(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	return string(b), nil
}
