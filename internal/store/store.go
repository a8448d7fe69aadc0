package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert violates a uniqueness rule.
	ErrConflict = errors.New("already exists")
)

var builder = entsql.Dialect(dialect.SQLite)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repos groups the repositories bound to one querier.
type Repos struct {
	Users        *UserRepo
	Characters   *CharacterRepo
	Sessions     *SessionRepo
	Questions    *QuestionRepo
	Solved       *SolvedRepo
	WrongAnswers *WrongAnswerRepo
	Settings     *SettingsRepo
	LLMRequests  *LLMRequestRepo
}

func newRepos(q querier, seq *sequenceCounter) *Repos {
	return &Repos{
		Users:        &UserRepo{q: q},
		Characters:   &CharacterRepo{q: q, seq: seq},
		Sessions:     &SessionRepo{q: q, seq: seq},
		Questions:    &QuestionRepo{q: q},
		Solved:       &SolvedRepo{q: q},
		WrongAnswers: &WrongAnswerRepo{q: q},
		Settings:     &SettingsRepo{q: q},
		LLMRequests:  &LLMRequestRepo{q: q, seq: seq},
	}
}

// Store owns the database handle. Its embedded Repos run outside any
// transaction; use InTx for read-modify-write sequences.
type Store struct {
	*Repos
	db  *sql.DB
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite has a single writer. One pooled connection keeps the pragmas
	// in force and turns lock contention into ordinary queueing.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{Repos: newRepos(db, seq), db: db, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InTx runs fn with repositories bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
// fn must not use the Store's own repositories.
func (s *Store) InTx(ctx context.Context, fn func(tx *Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(newRepos(tx, s.seq)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Reset deletes all learner data while keeping the schema.
func (s *Store) Reset(ctx context.Context) error {
	return s.InTx(ctx, func(tx *Repos) error {
		// Children first so foreign keys never dangle mid-reset.
		for _, t := range []string{
			"wrong_answers", "solved_questions", "study_sessions",
			"character_badges", "characters", "settings", "users",
		} {
			if _, err := exec(ctx, tx.Users.q, builder.Delete(t)); err != nil {
				return fmt.Errorf("clear %s: %w", t, err)
			}
		}
		return nil
	})
}

// applyPragmas configures SQLite for optimal single-user performance.
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
// 1. CODEPET_DB environment variable
// 2. $XDG_DATA_HOME/codepet/codepet.db
// 3. ~/.local/share/codepet/codepet.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("CODEPET_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "codepet.db")
	return p, EnsureDir(p)
}

// DataDir returns the per-user data directory for codepet files.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "codepet"), nil
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func exec(ctx context.Context, q querier, b entsql.Querier) (sql.Result, error) {
	query, args := b.Query()
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil && isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return res, err
}

func query(ctx context.Context, q querier, sel *entsql.Selector) (*sql.Rows, error) {
	query, args := sel.Query()
	return q.QueryContext(ctx, query, args...)
}

func queryRow(ctx context.Context, q querier, sel *entsql.Selector) *sql.Row {
	query, args := sel.Query()
	return q.QueryRowContext(ctx, query, args...)
}

func count(ctx context.Context, q querier, table string, where *entsql.Predicate) (int, error) {
	sel := builder.Select(entsql.Count("*")).From(builder.Table(table))
	if where != nil {
		sel.Where(where)
	}
	var n int
	if err := queryRow(ctx, q, sel).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
