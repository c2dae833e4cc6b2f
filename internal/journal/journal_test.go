package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/randutil"
	"github.com/lox/bjtrainer/internal/round"
	"github.com/lox/bjtrainer/internal/rules"
	"github.com/lox/bjtrainer/internal/strategy"
	"github.com/lox/bjtrainer/internal/trainer"
)

var (
	ten     = decimal.NewFromInt(10)
	hundred = decimal.NewFromInt(100)
)

func openMemory(t *testing.T, opts ...Option) *Journal {
	t.Helper()
	j, err := Open(context.Background(), ":memory:", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

// stackedTable puts cards on top of two ordered decks.
func stackedTable(cards string, rc int) round.State {
	cs := deck.MustParseCards(cards)
	cs = append(cs, deck.NewDeck()...)
	cs = append(cs, deck.NewDeck()...)
	s := round.NewState(deck.FromCards(cs), len(cs), round.UniformBets(1, ten), hundred)
	s.RunningCount = rc
	return s
}

func TestRecordAndSummarise(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	j := openMemory(t, WithClock(clock))

	log, err := j.StartSession(ctx, rules.Default(), 42)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), log.ID.Version())

	// Hard 16 against a ten at TC +1.5: standing is the deviation.
	e := round.NewEngine(rules.Default())
	sess := trainer.NewSession(e, randutil.New(1), 1, ten, hundred,
		trainer.WithState(stackedTable("Th 9c 6d Ts", 4)),
		trainer.WithRecorder(log))
	require.NoError(t, sess.Deal())

	_, err = sess.Act(ctx, strategy.Hit)
	require.NoError(t, err)
	_, err = sess.Act(ctx, strategy.Stand)
	require.NoError(t, err)

	sum, err := log.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, Tally{Spots: 2, Correct: 1}, sum.Decisions)
	assert.Equal(t, Tally{Spots: 1, Correct: 0}, sum.Deviations)
	assert.Equal(t, map[string]Tally{"16 vs 10": {Spots: 1, Correct: 0}}, sum.ByDeviation)
	assert.Equal(t, int64(42), sum.Session.Seed)
	assert.Equal(t, rules.Default().String(), sum.Session.Rules)
	assert.WithinDuration(t, clock.Now(), sum.Session.StartedAt, time.Second)
	assert.Equal(t, 0.5, sum.Decisions.Accuracy())
}

func TestSummaryOfEmptySession(t *testing.T) {
	ctx := context.Background()
	j := openMemory(t)

	log, err := j.StartSession(ctx, rules.Default(), 1)
	require.NoError(t, err)

	sum, err := log.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, sum.Decisions)
	assert.Empty(t, sum.ByDeviation)
	assert.Zero(t, sum.Decisions.Accuracy())
}

func TestSummaryUnknownSession(t *testing.T) {
	j := openMemory(t)
	_, err := j.Summary(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestJournalPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "journal.db")

	j, err := Open(ctx, path)
	require.NoError(t, err)
	first, err := j.StartSession(ctx, rules.Default(), 1)
	require.NoError(t, err)
	second, err := j.StartSession(ctx, rules.Default(), 2)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(ctx, path)
	require.NoError(t, err)
	defer j.Close()

	sessions, err := j.Sessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second.ID, sessions[0].ID, "newest first")
	assert.Equal(t, first.ID, sessions[1].ID)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	assert.Error(t, err)
}
