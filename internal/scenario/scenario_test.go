package scenario

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/bjtrainer/internal/count"
	"github.com/lox/bjtrainer/internal/deviation"
	"github.com/lox/bjtrainer/internal/randutil"
	"github.com/lox/bjtrainer/internal/round"
	"github.com/lox/bjtrainer/internal/rules"
)

func checkTarget(t *testing.T, ts *TargetShoe, target float64, m count.Method, tol float64) {
	t.Helper()
	got := count.TrueCount(ts.RunningCount, ts.Shoe.Len(), m)
	assert.Equal(t, ts.TrueCount, got)
	if m == count.Perfect {
		assert.LessOrEqual(t, math.Abs(got-target), tol)
	} else {
		assert.Equal(t, target, got)
	}
	// A full shoe balances to zero, so what is left mirrors the discards.
	assert.Equal(t, -ts.RunningCount, ts.Shoe.HiLoSum())
	assert.GreaterOrEqual(t, ts.Shoe.Len(), 104)
	assert.Equal(t, 312, ts.Shoe.Len()+ts.Discarded)
}

func TestForTargetTC(t *testing.T) {
	tests := []struct {
		name   string
		target float64
		method count.Method
	}{
		{"perfect plus three", 3, count.Perfect},
		{"full deck plus three", 3, count.FullDeck},
		{"half deck plus two and a half", 2.5, count.HalfDeck},
		{"full deck minus two", -2, count.FullDeck},
		{"perfect zero", 0, count.Perfect},
		{"perfect plus eight", 8, count.Perfect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(1); seed <= 5; seed++ {
				b := NewBuilder(randutil.New(seed))
				ts, err := b.ForTargetTC(tt.target, 6, tt.method)
				require.NoError(t, err)
				checkTarget(t, ts, tt.target, tt.method, defaultTolerance)
			}
		})
	}
}

func TestForTargetTCUnrepresentable(t *testing.T) {
	b := NewBuilder(randutil.New(1))
	_, err := b.ForTargetTC(2.5, 6, count.FullDeck)
	assert.ErrorIs(t, err, ErrConstructionFailed)

	_, err = b.ForTargetTC(1.25, 6, count.HalfDeck)
	assert.ErrorIs(t, err, ErrConstructionFailed)

	_, err = b.ForTargetTC(1, 0, count.Perfect)
	assert.ErrorIs(t, err, ErrConstructionFailed)
}

func TestForTargetTCImpossible(t *testing.T) {
	b := NewBuilder(randutil.New(1))
	ts, err := b.ForTargetTC(40, 1, count.FullDeck)
	assert.ErrorIs(t, err, ErrConstructionFailed)
	assert.Nil(t, ts)
}

func TestBucketConstruction(t *testing.T) {
	tests := []struct {
		target float64
		method count.Method
	}{
		{3, count.Perfect},
		{3, count.FullDeck},
		{-4, count.FullDeck},
		{5.5, count.HalfDeck},
		{-1.7, count.Perfect},
	}

	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			b := NewBuilder(randutil.New(3))
			ts, ok := b.buckets(tt.target, 6, tt.method)
			require.True(t, ok)
			assert.False(t, ts.Simulated)
			checkTarget(t, ts, tt.target, tt.method, defaultTolerance)
		})
	}
}

func TestRemovalMix(t *testing.T) {
	tests := []struct {
		name               string
		rc, n, decks       int
		low, neutral, high int
		ok                 bool
	}{
		{name: "positive count", rc: 10, n: 20, decks: 6, low: 10, neutral: 10, high: 0, ok: true},
		{name: "negative count", rc: -4, n: 10, decks: 6, low: 0, neutral: 6, high: 4, ok: true},
		{name: "neutrals run out", rc: 0, n: 80, decks: 1, low: 34, neutral: 12, high: 34, ok: false},
		{name: "odd remainder", rc: 1, n: 16, decks: 1, low: 3, neutral: 11, high: 2, ok: true},
		{name: "count larger than removal", rc: 12, n: 10, decks: 6, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			low, neutral, high, ok := removalMix(tt.rc, tt.n, tt.decks)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.low, low)
			assert.Equal(t, tt.neutral, neutral)
			assert.Equal(t, tt.high, high)
			assert.Equal(t, tt.n, low+neutral+high)
			assert.Equal(t, tt.rc, low-high)
		})
	}
}

func TestForDeviation(t *testing.T) {
	methods := []count.Method{count.Perfect, count.HalfDeck, count.FullDeck}
	bet := decimal.NewFromInt(10)
	bankroll := decimal.NewFromInt(1000)

	for i, dev := range deviation.All() {
		for _, m := range methods {
			for _, seats := range []int{1, 3} {
				b := NewBuilder(randutil.New(int64(100*i + seats)))
				sc, err := b.ForDeviation(i, 6, m, seats)
				require.NoError(t, err, "%s %v %d seats", dev.Name, m, seats)

				assert.Equal(t, seats-1, sc.Seat)
				assert.True(t, dev.Applies(sc.TrueCount), "%s: tc %v", dev.Name, sc.TrueCount)

				r := rules.Default()
				r.CountMethod = m
				e := round.NewEngine(r)
				s, err := e.Deal(sc.State(bet, bankroll))
				require.NoError(t, err)
				assert.True(t, s.ShoeConsistent())

				h := s.Hands[sc.Seat]
				assert.Equal(t, sc.Player[:], h.Cards)
				up, _ := s.DealerUp()
				assert.Equal(t, sc.Up, up)
				assert.Equal(t, dev.DealerUp, up.Value())
				assert.False(t, s.Dealer.IsTwoCard21(), "no dealer natural")
				assert.Equal(t, sc.TrueCount, e.TrueCount(s), "%s: tc at decision", dev.Name)

				if dev.Insurance {
					assert.Equal(t, round.Insurance, s.Phase)
					continue
				}
				if s.Phase == round.Insurance {
					s = e.Insure(s, false)
				}
				require.Equal(t, round.PlayerAction, s.Phase)
				assert.Equal(t, sc.Seat, s.Active)
				if dev.IsPair() {
					assert.True(t, h.IsPair())
					assert.Equal(t, dev.Pair, h.PairValue())
				} else {
					assert.False(t, h.IsPair())
					assert.Equal(t, dev.Total, h.Total())
					assert.Equal(t, dev.Soft, h.IsSoft())
				}
			}
		}
	}
}

func TestForDeviationErrors(t *testing.T) {
	b := NewBuilder(randutil.New(1))
	_, err := b.ForDeviation(-1, 6, count.Perfect, 1)
	assert.ErrorIs(t, err, ErrConstructionFailed)
	_, err = b.ForDeviation(1, 6, count.Perfect, 4)
	assert.ErrorIs(t, err, ErrConstructionFailed)
}

func TestTargetShoeState(t *testing.T) {
	b := NewBuilder(randutil.New(9))
	ts, err := b.ForTargetTC(2, 6, count.FullDeck)
	require.NoError(t, err)
	s := ts.State(round.UniformBets(2, decimal.NewFromInt(5)), decimal.NewFromInt(100))
	assert.Equal(t, round.Idle, s.Phase)
	assert.Equal(t, ts.RunningCount, s.RunningCount)
	assert.Equal(t, 312, s.ShoeSize)
	assert.True(t, s.ShoeConsistent())
}
