// Package journal keeps a sqlite log of graded decisions across practice
// sessions so accuracy can be reviewed per session and per deviation.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/lox/bjtrainer/internal/rules"
)

// ErrUnknownSession is returned when a session id has no row.
var ErrUnknownSession = errors.New("unknown session")

// Journal is an open decision log.
type Journal struct {
	db     *sql.DB
	clock  quartz.Clock
	logger *log.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithClock sets the clock used for timestamps.
func WithClock(clock quartz.Clock) Option {
	return func(j *Journal) {
		j.clock = clock
	}
}

// WithLogger sets the journal logger.
func WithLogger(logger *log.Logger) Option {
	return func(j *Journal) {
		j.logger = logger.WithPrefix("journal")
	}
}

// Open opens or creates the journal at path and migrates it. ":memory:"
// opens a private in-memory journal.
func Open(ctx context.Context, path string, opts ...Option) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("empty journal path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // SQLite is not concurrent for writes

	j := &Journal{
		db:     db,
		clock:  quartz.NewReal(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(j)
	}

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := j.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Migrate creates missing tables and indexes.
func (j *Journal) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			rules TEXT NOT NULL,
			seed INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS decisions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			recorded_at TIMESTAMP NOT NULL,
			insurance INTEGER NOT NULL,
			cards TEXT NOT NULL,
			dealer_up TEXT NOT NULL,
			total INTEGER NOT NULL,
			soft INTEGER NOT NULL,
			running_count INTEGER NOT NULL,
			true_count REAL NOT NULL,
			chosen TEXT NOT NULL,
			expected TEXT NOT NULL,
			basic TEXT NOT NULL,
			deviation TEXT NOT NULL DEFAULT '',
			deviation_spot INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_session ON decisions(session_id, id);`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_deviation ON decisions(deviation) WHERE deviation != '';`,
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate journal: %w", err)
		}
	}
	return tx.Commit()
}

// StartSession registers a new practice session and returns its recorder.
func (j *Journal) StartSession(ctx context.Context, r rules.Rules, seed int64) (*SessionLog, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, rules, seed) VALUES (?, ?, ?, ?)`,
		id.String(), j.clock.Now().UTC(), r.String(), seed)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	j.logger.Debug("Started session", "id", id, "rules", r.String())
	return &SessionLog{journal: j, ID: id}, nil
}
