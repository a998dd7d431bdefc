package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db      *sql.DB
	dialect string
	seq     *sequenceCounter
	locks   *keyedMutex
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	return OpenDriver(context.Background(), DriverSQLite, dsn)
}

// OpenDriver opens a Store on the given driver ("sqlite" or "postgres")
// and migrates the schema.
func OpenDriver(ctx context.Context, driver, dsn string) (*Store, error) {
	var (
		db  *sql.DB
		d   string
		err error
	)
	switch driver {
	case DriverSQLite, "":
		d = dialect.SQLite
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		// SQLite allows one writer; a single connection keeps transactions
		// from failing with SQLITE_BUSY instead of waiting.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	case DriverPostgres:
		d = dialect.Postgres
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown database driver: %q", driver)
	}

	if err := migrate(ctx, d, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(ctx, d, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, dialect: d, seq: seq, locks: newKeyedMutex()}, nil
}

func migrate(ctx context.Context, d string, db *sql.DB) error {
	m, err := schema.NewMigrate(entsql.OpenDB(d, db))
	if err != nil {
		return err
	}
	return m.Create(ctx, tables...)
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the SQL dialect name in use.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Repos returns repositories that run outside any transaction.
func (s *Store) Repos() Repos {
	return s.bind(s.db)
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{b: s.builder(s.db)}
}

// InTx runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(s.bind(tx)); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Lock serializes writers on the given keys within this process. Keys are
// acquired in sorted order. Call the returned function to release them.
func (s *Store) Lock(keys ...string) (unlock func()) {
	return s.locks.Lock(keys...)
}

func (s *Store) bind(q querier) Repos {
	b := s.builder(q)
	return Repos{
		Courses:     &courseRepo{b: b},
		Chunks:      &chunkRepo{b: b},
		Concepts:    &conceptRepo{b: b},
		Questions:   &questionRepo{b: b},
		Attempts:    &attemptRepo{b: b, seq: s.seq},
		Mastery:     &masteryRepo{b: b},
		Completions: &completionRepo{b: b, seq: s.seq},
		Events:      &eventRepo{b: b},
	}
}

func (s *Store) builder(q querier) *sqlBuilder {
	return &sqlBuilder{q: q, dialect: s.dialect}
}

// applyPragmas configures SQLite for optimal single-process performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. STUDYPATH_DB environment variable
// 2. $XDG_DATA_HOME/studypath/studypath.db
// 3. ~/.local/share/studypath/studypath.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("STUDYPATH_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "studypath", "studypath.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
