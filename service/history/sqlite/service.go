package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/viant/taskly/runtime/track"
	"github.com/viant/taskly/service/history"
	_ "modernc.org/sqlite" // database driver
)

const schema = `
CREATE TABLE IF NOT EXISTS completed_runs (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL,
	name        TEXT NOT NULL,
	owner_id    TEXT NOT NULL DEFAULT '',
	owner_label TEXT NOT NULL DEFAULT '',
	started_at  DATETIME NOT NULL,
	ended_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_completed_runs_name ON completed_runs(name);
CREATE INDEX IF NOT EXISTS idx_completed_runs_owner ON completed_runs(owner_id);
`

// Config represents the sqlite history configuration.
type Config struct {
	// DSN locates the database.  The default keeps history in memory so that
	// nothing survives the process.
	DSN string

	// MaxEntries bounds the retained runs globally.
	MaxEntries int
}

// DefaultConfig returns the default sqlite history configuration.
func DefaultConfig() Config {
	return Config{
		DSN:        ":memory:",
		MaxEntries: history.DefaultMaxEntries,
	}
}

// Service implements a sqlite-backed history store.  The bound and eviction
// semantics match the in-memory store; the monotonic seq column provides the
// insertion-order tie break.
type Service struct {
	config Config
	db     *sql.DB
}

var _ history.Store = (*Service)(nil)

// New opens (or creates) the database and ensures the schema exists.  The
// caller is responsible for calling Close.
func New(options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig()}
	for _, opt := range options {
		opt(s)
	}
	if s.config.MaxEntries <= 0 {
		s.config.MaxEntries = history.DefaultMaxEntries
	}
	if s.config.DSN == "" {
		s.config.DSN = ":memory:"
	}

	db, err := sql.Open("sqlite", s.config.DSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", s.config.DSN, err)
	}
	// a single connection prevents SQLITE_BUSY and keeps :memory: databases
	// from silently forking per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s.db = db
	return s, nil
}

// MaxEntries returns the configured global bound.
func (s *Service) MaxEntries() int {
	return s.config.MaxEntries
}

// Append records an ended handle and evicts the globally oldest rows when
// the bound is exceeded, all within one transaction.
func (s *Service) Append(ctx context.Context, handle *track.Handle) ([]*track.Handle, error) {
	if handle == nil {
		return nil, history.ErrNilHandle
	}
	endedAt := handle.EndedAt()
	if endedAt == nil {
		return nil, history.ErrStillRunning
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	var ownerID, ownerLabel string
	if owner := handle.Owner(); owner != nil {
		ownerID, ownerLabel = owner.ID, owner.Label
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO completed_runs (id, name, owner_id, owner_label, started_at, ended_at)
		VALUES (?,?,?,?,?,?)`,
		handle.ID(), handle.Name(), ownerID, ownerLabel,
		handle.StartedAt().UTC(), endedAt.UTC(),
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	var count int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM completed_runs`).Scan(&count); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}

	var evicted []*track.Handle
	if overflow := count - s.config.MaxEntries; overflow > 0 {
		if evicted, err = evictOldest(ctx, tx, overflow); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append: %w", err)
	}
	return evicted, nil
}

// evictOldest deletes the rows with the oldest end times, breaking ties by
// insertion order, and returns them restored as handles.
func evictOldest(ctx context.Context, tx *sql.Tx, overflow int) ([]*track.Handle, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT seq, id, name, owner_id, owner_label, started_at, ended_at
		FROM completed_runs
		ORDER BY ended_at ASC, seq ASC
		LIMIT ?`, overflow)
	if err != nil {
		return nil, fmt.Errorf("select evictable runs: %w", err)
	}
	defer rows.Close()

	var evicted []*track.Handle
	var seqs []any
	for rows.Next() {
		var seq int64
		var id, name, ownerID, ownerLabel string
		var startedAt, endedAt time.Time
		if err := rows.Scan(&seq, &id, &name, &ownerID, &ownerLabel, &startedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scan evictable run: %w", err)
		}
		evicted = append(evicted, restore(id, name, ownerID, ownerLabel, startedAt, endedAt))
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select evictable runs: %w", err)
	}
	if len(seqs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(seqs)), ",")
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM completed_runs WHERE seq IN (%s)", placeholders), seqs...); err != nil {
		return nil, fmt.Errorf("evict runs: %w", err)
	}
	return evicted, nil
}

// ByName returns the retained runs of the named task in insertion order.
func (s *Service) ByName(ctx context.Context, name string) ([]*track.Handle, error) {
	return s.query(ctx, `WHERE name = ?`, name)
}

// ByOwner returns the retained runs requested by the owner with the given
// ID, in insertion order.
func (s *Service) ByOwner(ctx context.Context, ownerID string) ([]*track.Handle, error) {
	return s.query(ctx, `WHERE owner_id = ?`, ownerID)
}

// List returns every retained run in insertion order.
func (s *Service) List(ctx context.Context) ([]*track.Handle, error) {
	return s.query(ctx, ``)
}

func (s *Service) query(ctx context.Context, where string, args ...any) ([]*track.Handle, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, name, owner_id, owner_label, started_at, ended_at
		FROM completed_runs %s
		ORDER BY seq ASC`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*track.Handle
	for rows.Next() {
		var id, name, ownerID, ownerLabel string
		var startedAt, endedAt time.Time
		if err := rows.Scan(&id, &name, &ownerID, &ownerLabel, &startedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, restore(id, name, ownerID, ownerLabel, startedAt, endedAt))
	}
	return out, rows.Err()
}

// Count returns the number of retained runs.
func (s *Service) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM completed_runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return count, nil
}

// Clear removes every retained run.
func (s *Service) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM completed_runs`); err != nil {
		return fmt.Errorf("clear runs: %w", err)
	}
	return nil
}

// ClearByOwner removes the retained runs requested by the owner with the
// given ID.
func (s *Service) ClearByOwner(ctx context.Context, ownerID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM completed_runs WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("clear runs by owner: %w", err)
	}
	return nil
}

// Close releases the underlying database connection.
func (s *Service) Close() error {
	return s.db.Close()
}

func restore(id, name, ownerID, ownerLabel string, startedAt, endedAt time.Time) *track.Handle {
	var owner *track.Owner
	if ownerID != "" {
		owner = &track.Owner{ID: ownerID, Label: ownerLabel}
	}
	return track.Restore(id, name, owner, startedAt, endedAt)
}
