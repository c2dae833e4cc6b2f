package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lox/bjtrainer/internal/trainer"
)

// SessionLog records decisions for one session. It implements
// trainer.Recorder.
type SessionLog struct {
	journal *Journal
	ID      uuid.UUID
}

var _ trainer.Recorder = (*SessionLog)(nil)

// Record appends a graded decision.
func (s *SessionLog) Record(ctx context.Context, d trainer.Decision) error {
	name := ""
	if d.Deviation.Matched {
		name = d.Deviation.Deviation.Name
	}
	_, err := s.journal.db.ExecContext(ctx, `
INSERT INTO decisions (
    session_id, recorded_at, insurance, cards, dealer_up, total, soft,
    running_count, true_count, chosen, expected, basic, deviation,
    deviation_spot, correct
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID.String(), s.journal.clock.Now().UTC(), d.Insurance, d.Cards, d.DealerUp.String(),
		d.Total, d.Soft, d.RunningCount, d.TrueCount,
		d.Chosen.String(), d.Expected.String(), d.Basic.String(), name,
		d.IsDeviationSpot(), d.Correct)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// Summary returns the totals for this session.
func (s *SessionLog) Summary(ctx context.Context) (Summary, error) {
	return s.journal.Summary(ctx, s.ID)
}

// Session is one row of the sessions table.
type Session struct {
	ID        uuid.UUID
	StartedAt time.Time
	Rules     string
	Seed      int64
}

// Tally counts attempts and correct answers.
type Tally struct {
	Spots   int
	Correct int
}

// Accuracy returns the fraction answered correctly.
func (t Tally) Accuracy() float64 {
	if t.Spots == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Spots)
}

// Summary aggregates a session's journal.
type Summary struct {
	Session    Session
	Decisions  Tally
	Deviations Tally
	// ByDeviation counts the spots where a named deviation (or the
	// insurance rule) changed the correct answer.
	ByDeviation map[string]Tally
}

// Summary aggregates the decisions recorded for a session.
func (j *Journal) Summary(ctx context.Context, id uuid.UUID) (Summary, error) {
	sess, err := j.session(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Session: sess, ByDeviation: make(map[string]Tally)}

	err = j.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(correct), 0),
       COALESCE(SUM(deviation_spot), 0), COALESCE(SUM(deviation_spot * correct), 0)
FROM decisions WHERE session_id = ?`, id.String()).Scan(
		&sum.Decisions.Spots, &sum.Decisions.Correct,
		&sum.Deviations.Spots, &sum.Deviations.Correct)
	if err != nil {
		return Summary{}, fmt.Errorf("summarise decisions: %w", err)
	}

	rows, err := j.db.QueryContext(ctx, `
SELECT deviation, COUNT(*), SUM(correct)
FROM decisions
WHERE session_id = ? AND deviation_spot = 1 AND deviation != ''
GROUP BY deviation`, id.String())
	if err != nil {
		return Summary{}, fmt.Errorf("summarise deviations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var t Tally
		if err := rows.Scan(&name, &t.Spots, &t.Correct); err != nil {
			return Summary{}, err
		}
		sum.ByDeviation[name] = t
	}
	return sum, rows.Err()
}

func (j *Journal) session(ctx context.Context, id uuid.UUID) (Session, error) {
	var (
		sess  Session
		idStr string
	)
	err := j.db.QueryRowContext(ctx,
		`SELECT id, started_at, rules, seed FROM sessions WHERE id = ?`, id.String()).
		Scan(&idStr, &sess.StartedAt, &sess.Rules, &sess.Seed)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	if err != nil {
		return Session{}, err
	}
	sess.ID, err = uuid.Parse(idStr)
	return sess, err
}

// Sessions lists the most recent sessions, newest first.
func (j *Journal) Sessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	// UUIDv7 ids sort by creation time.
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, started_at, rules, seed FROM sessions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			s     Session
			idStr string
		)
		if err := rows.Scan(&idStr, &s.StartedAt, &s.Rules, &s.Seed); err != nil {
			return nil, err
		}
		if s.ID, err = uuid.Parse(idStr); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
