package round

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/randutil"
	"github.com/lox/bjtrainer/internal/rules"
	"github.com/lox/bjtrainer/internal/strategy"
)

var (
	ten     = decimal.NewFromInt(10)
	hundred = decimal.NewFromInt(100)
)

// stacked builds an idle table whose shoe holds exactly cards, in order.
func stacked(t *testing.T, seats int, cards string) State {
	t.Helper()
	cs := deck.MustParseCards(cards)
	return NewState(deck.FromCards(cs), len(cs), UniformBets(seats, ten), hundred)
}

func dealt(t *testing.T, e *Engine, s State) State {
	t.Helper()
	n, err := e.Deal(s)
	require.NoError(t, err)
	return n
}

func decimalEqual(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.NewFromInt(want).Equal(got), "want %d, got %s", want, got)
}

func TestDealOrderAndCount(t *testing.T) {
	e := NewEngine(rules.Default())
	s := dealt(t, e, stacked(t, 2, "5h 6h Kd 9c Tc 2s 3d"))

	require.Len(t, s.Hands, 2)
	assert.Equal(t, "5♥ 9♣", s.Hands[0].String())
	assert.Equal(t, "6♥ T♣", s.Hands[1].String())
	assert.True(t, s.Dealer.Cards[0].FaceDown)
	assert.Equal(t, deck.King, s.Dealer.Cards[0].Rank)
	up, ok := s.DealerUp()
	require.True(t, ok)
	assert.Equal(t, deck.Two, up.Rank)

	// 5 6 9 T 2 are visible; the king is not counted yet.
	assert.Equal(t, 2, s.RunningCount)
	assert.Equal(t, PlayerAction, s.Phase)
	assert.Equal(t, 1, s.Active, "rightmost hand plays first")
	decimalEqual(t, 80, s.Bankroll)
	assert.True(t, s.ShoeConsistent())
	assert.Equal(t, 1, s.Shoe.Len())
}

func TestDealAutoCompletes21(t *testing.T) {
	e := NewEngine(rules.Default())
	s := dealt(t, e, stacked(t, 2, "As 9h 5c Kd Th 7s"))

	assert.True(t, s.Hands[0].Complete)
	assert.True(t, s.Hands[0].Blackjack)
	assert.False(t, s.Hands[1].Complete)
	assert.Equal(t, PlayerAction, s.Phase)
	assert.Equal(t, 1, s.Active)
}

func TestDealAllCompleteSkipsToDealer(t *testing.T) {
	e := NewEngine(rules.Default())
	s := dealt(t, e, stacked(t, 1, "As 9c Kd 7s"))
	assert.Equal(t, DealerTurn, s.Phase)
	assert.Equal(t, -1, s.Active)
}

func TestDealerNaturalSkipsPlayerAction(t *testing.T) {
	e := NewEngine(rules.Default())
	s := dealt(t, e, stacked(t, 1, "9h As 7c Ks"))
	assert.Equal(t, DealerTurn, s.Phase)
}

func TestInsurance(t *testing.T) {
	e := NewEngine(rules.Default())

	t.Run("offered on ace without player blackjack", func(t *testing.T) {
		s := dealt(t, e, stacked(t, 1, "9h Kc 7c As"))
		assert.Equal(t, Insurance, s.Phase)
		assert.Equal(t, []strategy.Action{strategy.Insure, strategy.DeclineInsurance}, e.Legal(s))

		// Player actions are no-ops until insurance is settled.
		assert.Equal(t, s, e.Stand(s))
	})

	t.Run("not offered when a player has blackjack", func(t *testing.T) {
		s := dealt(t, e, stacked(t, 2, "Ah 9h 5c Kd 7c As"))
		assert.NotEqual(t, Insurance, s.Phase)
	})

	t.Run("taken and paid on dealer natural", func(t *testing.T) {
		s := dealt(t, e, stacked(t, 1, "9h Kc 7c As"))
		s = e.Insure(s, true)
		decimalEqual(t, 85, s.Bankroll)
		assert.True(t, s.Hands[0].Insured)
		assert.Equal(t, DealerTurn, s.Phase)

		s, err := e.Resolve(s)
		require.NoError(t, err)
		require.Len(t, s.Results, 1)
		assert.Equal(t, Lose, s.Results[0].Outcome)
		decimalEqual(t, 15, s.Results[0].Insurance)
		decimalEqual(t, 100, s.Bankroll)
	})

	t.Run("declined and dealer has no natural", func(t *testing.T) {
		s := dealt(t, e, stacked(t, 1, "9h 6c 9c As"))
		s = e.Insure(s, false)
		decimalEqual(t, 90, s.Bankroll)
		assert.Equal(t, PlayerAction, s.Phase)
		assert.Equal(t, 0, s.Active)
	})
}

func TestSplit(t *testing.T) {
	e := NewEngine(rules.Default())
	s := dealt(t, e, stacked(t, 1, "8h 9c 8d 6s 3c Td 2h"))
	decimalEqual(t, 90, s.Bankroll)

	split := e.Split(s)
	require.Len(t, split.Hands, 2)
	decimalEqual(t, 80, split.Bankroll)
	assert.Equal(t, 3, split.Shoe.Len(), "split draws nothing")
	for i, h := range split.Hands {
		assert.Len(t, h.Cards, 1, "hand %d", i)
		assert.Equal(t, deck.Eight, h.Cards[0].Rank)
		assert.True(t, h.AwaitingCard)
		assert.True(t, h.FromSplit)
		assert.True(t, ten.Equal(h.Bet))
	}
	assert.Equal(t, 1, split.Active)

	// Awaiting hands are not playable until dealt to.
	assert.Equal(t, split, e.Stand(split))
	hit, err := e.Hit(split)
	require.NoError(t, err)
	assert.Equal(t, split, hit)

	n, err := e.DealToHand(split, 1)
	require.NoError(t, err)
	assert.Equal(t, "8♦ 3♣", n.Hands[1].String())
	assert.False(t, n.Hands[1].AwaitingCard)
	assert.True(t, e.Capabilities(n).CanDouble, "double after split")

	n, err = e.Double(n)
	require.NoError(t, err)
	assert.True(t, n.Hands[1].Complete)
	decimalEqual(t, 70, n.Bankroll)

	n = e.Advance(n)
	assert.Equal(t, 0, n.Active)
	n, err = e.DealToHand(n, 0)
	require.NoError(t, err)
	assert.Equal(t, "8♥ 2♥", n.Hands[0].String())

	// The original state is untouched.
	assert.Len(t, s.Hands, 1)
	assert.Len(t, s.Hands[0].Cards, 2)
}

func TestSplitAcesCompleteOnOneCard(t *testing.T) {
	e := NewEngine(rules.Default())
	s := dealt(t, e, stacked(t, 1, "Ah 9c Ad 6s 5c 4d"))
	s = e.Split(s)
	s, err := e.DealToHand(s, 1)
	require.NoError(t, err)
	assert.True(t, s.Hands[1].Complete)
	assert.False(t, s.Hands[1].Blackjack)
	assert.Equal(t, 16, s.Hands[1].Total())
}

func TestSplitLimit(t *testing.T) {
	r := rules.Default()
	r.MaxHands = 2
	e := NewEngine(r)
	s := dealt(t, e, stacked(t, 1, "8h 9c 8d 6s 8c 8s Td"))
	s = e.Split(s)
	s, err := e.DealToHand(s, 1)
	require.NoError(t, err)
	require.True(t, s.Hands[1].IsPair())
	assert.False(t, e.Capabilities(s).CanSplit)
	assert.Equal(t, s, e.Split(s))
}

func TestSurrenderRefundsHalf(t *testing.T) {
	e := NewEngine(rules.Default())
	s := dealt(t, e, stacked(t, 1, "Th 9c 6d Ts 5h"))
	require.True(t, e.Capabilities(s).CanSurrender)

	s = e.Surrender(s)
	decimalEqual(t, 95, s.Bankroll)
	assert.True(t, s.Hands[0].Surrendered)
	assert.True(t, s.Hands[0].Complete)

	s = e.Advance(s)
	s, err := e.Resolve(s)
	require.NoError(t, err)
	assert.Equal(t, Surrendered, s.Results[0].Outcome)
	decimalEqual(t, 95, s.Bankroll)
	assert.Equal(t, 1, s.Shoe.Len(), "dealer does not draw for a surrendered table")
}

func TestSurrenderDisabled(t *testing.T) {
	r := rules.Default()
	r.Surrender = false
	e := NewEngine(r)
	s := dealt(t, e, stacked(t, 1, "Th 9c 6d Ts"))
	assert.Equal(t, s, e.Surrender(s))
}

func TestDoubleRequiresTwoCards(t *testing.T) {
	e := NewEngine(rules.Default())
	s := dealt(t, e, stacked(t, 1, "2h 9c 3d Ts 4c 5d"))
	s, err := e.Hit(s)
	require.NoError(t, err)
	require.Len(t, s.Hands[0].Cards, 3)

	n, err := e.Double(s)
	require.NoError(t, err)
	assert.Equal(t, s, n)
}

func TestDoubleCompletesUnder21(t *testing.T) {
	e := NewEngine(rules.Default())
	s := dealt(t, e, stacked(t, 1, "5h 9c 4d Ts 2c"))
	s, err := e.Double(s)
	require.NoError(t, err)
	assert.True(t, s.Hands[0].Complete)
	assert.Equal(t, 11, s.Hands[0].Total())
	assert.True(t, decimal.NewFromInt(20).Equal(s.Hands[0].Bet))
	decimalEqual(t, 80, s.Bankroll)
}

func TestHitBustAndTwentyOne(t *testing.T) {
	e := NewEngine(rules.Default())

	s := dealt(t, e, stacked(t, 1, "Th 9c 6d Ts Kc"))
	s, err := e.Hit(s)
	require.NoError(t, err)
	assert.True(t, s.Hands[0].Busted)
	assert.True(t, s.Hands[0].Complete)

	s = dealt(t, e, stacked(t, 1, "Th 9c 6d Ts 5c"))
	s, err = e.Hit(s)
	require.NoError(t, err)
	assert.False(t, s.Hands[0].Busted)
	assert.True(t, s.Hands[0].Complete)
}

func TestAdvance(t *testing.T) {
	e := NewEngine(rules.Default())
	s := dealt(t, e, stacked(t, 3, "Th 9h 8h 7c Td 9d 8d 6s"))
	require.Equal(t, 2, s.Active)

	assert.Equal(t, s, e.Advance(s), "active hand incomplete")

	s = e.Advance(e.Stand(s))
	assert.Equal(t, 1, s.Active)
	s = e.Advance(e.Stand(s))
	assert.Equal(t, 0, s.Active)
	s = e.Advance(e.Stand(s))
	assert.Equal(t, DealerTurn, s.Phase)
	assert.Equal(t, -1, s.Active)
}

func TestHoleRevealCountsOnce(t *testing.T) {
	e := NewEngine(rules.Default())
	s := dealt(t, e, stacked(t, 1, "Th 6c 8d Ts 9h"))
	s = e.Advance(e.Stand(s))
	require.Equal(t, DealerTurn, s.Phase)
	before := s.RunningCount

	s, err := e.DealerStep(s)
	require.NoError(t, err)
	assert.True(t, s.HoleRevealed)
	assert.False(t, s.Dealer.Cards[0].FaceDown)
	assert.Equal(t, before+1, s.RunningCount)
	assert.False(t, s.DealerDone)

	s, err = e.DealerStep(s)
	require.NoError(t, err)
	assert.Equal(t, before+1, s.RunningCount, "nine draws with no count change")
	assert.True(t, s.DealerDone)
	assert.True(t, s.Dealer.Busted)

	again, err := e.DealerStep(s)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestDealerSoft17(t *testing.T) {
	tests := []struct {
		name      string
		hitSoft17 bool
		wantCards int
	}{
		{"stands on soft 17", false, 2},
		{"hits soft 17", true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rules.Default()
			r.HitSoft17 = tt.hitSoft17
			e := NewEngine(r)
			s := dealt(t, e, stacked(t, 1, "Th 6c 8d As 2h"))
			s = e.Insure(s, false)
			s = e.Advance(e.Stand(s))
			s, err := e.PlayDealer(s)
			require.NoError(t, err)
			assert.Len(t, s.Dealer.Cards, tt.wantCards)
		})
	}
}

func TestResolvePayouts(t *testing.T) {
	tests := []struct {
		name     string
		cards    string
		outcome  Outcome
		bankroll int64
	}{
		{name: "blackjack pays 3:2", cards: "As 9c Kd 7s", outcome: Natural, bankroll: 115},
		{name: "win doubles the bet", cards: "Th 7c 9d Ts", outcome: Win, bankroll: 110},
		{name: "push returns the bet", cards: "Th 7c 7d Ts", outcome: Push, bankroll: 100},
		{name: "lose pays nothing", cards: "Th 9c 7d Ts", outcome: Lose, bankroll: 90},
		{name: "dealer bust", cards: "Th 6c 8d Ts 9h", outcome: Win, bankroll: 110},
		{name: "blackjack against dealer blackjack pushes", cards: "As Ac Kd Ks", outcome: Push, bankroll: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(rules.Default())
			s := dealt(t, e, stacked(t, 1, tt.cards))
			if s.Phase == PlayerAction {
				s = e.Advance(e.Stand(s))
			}
			s, err := e.Resolve(s)
			require.NoError(t, err)
			assert.Equal(t, Payout, s.Phase)
			require.Len(t, s.Results, 1)
			assert.Equal(t, tt.outcome, s.Results[0].Outcome)
			decimalEqual(t, tt.bankroll, s.Bankroll)
			assert.True(t, s.ShoeConsistent())
		})
	}
}

func TestSixFivePayout(t *testing.T) {
	r := rules.Default()
	r.BlackjackPayout = 1.2
	e := NewEngine(r)
	s := dealt(t, e, stacked(t, 1, "As 9c Kd 7s"))
	s, err := e.Resolve(s)
	require.NoError(t, err)
	decimalEqual(t, 112, s.Bankroll)
}

func TestInvalidTransitionsAreNoOps(t *testing.T) {
	e := NewEngine(rules.Default())
	idle := stacked(t, 1, "Th 9c 6d Ts 5h")

	hit, err := e.Hit(idle)
	require.NoError(t, err)
	assert.Equal(t, idle, hit)
	assert.Equal(t, idle, e.Stand(idle))
	assert.Equal(t, idle, e.Split(idle))
	assert.Equal(t, idle, e.Surrender(idle))
	assert.Equal(t, idle, e.Advance(idle))
	resolved, err := e.Resolve(idle)
	require.NoError(t, err)
	assert.Equal(t, idle, resolved)

	s := dealt(t, e, idle)
	again, err := e.Deal(s)
	require.NoError(t, err)
	assert.Equal(t, s, again)
	assert.Equal(t, s, e.Split(s), "16 is not a pair")
	assert.Equal(t, s, e.Insure(s, true))
}

func TestDealShoeExhausted(t *testing.T) {
	e := NewEngine(rules.Default())
	s := stacked(t, 2, "Th 9c 6d Ts 5h")
	n, err := e.Deal(s)
	assert.ErrorIs(t, err, ErrShoeExhausted)
	assert.Equal(t, s, n)
}

func TestHitShoeExhausted(t *testing.T) {
	e := NewEngine(rules.Default())
	s := dealt(t, e, stacked(t, 1, "Th 9c 2d Ts"))
	n, err := e.Hit(s)
	assert.ErrorIs(t, err, ErrShoeExhausted)
	assert.Equal(t, s, n)
}

func TestReplenishKeepsTableCards(t *testing.T) {
	r := rules.Default()
	r.Decks = 1
	e := NewEngine(r)
	s := dealt(t, e, stacked(t, 1, "Th 9c 6d 5s"))
	require.Equal(t, PlayerAction, s.Phase)
	_, err := e.Hit(s)
	require.ErrorIs(t, err, ErrShoeExhausted)

	n := e.Replenish(s, randutil.New(3))
	assert.Equal(t, 48, n.Shoe.Len())
	assert.Equal(t, 52, n.ShoeSize)
	assert.True(t, n.ShoeConsistent())
	// T 6 5 are face up; the hole card waits for the reveal.
	assert.Equal(t, 1, n.RunningCount)
	for _, c := range n.Shoe.Cards() {
		assert.False(t, c.Rank == deck.Ten && c.Suit == deck.Hearts, "table card left in the shoe")
	}
	assert.Equal(t, s.Hands, n.Hands)
	assert.Equal(t, s.Dealer, n.Dealer)

	n, err = e.Hit(n)
	require.NoError(t, err)
	assert.Len(t, n.Hands[0].Cards, 3)
}

func TestFullRoundsKeepShoeConsistent(t *testing.T) {
	r := rules.Default()
	e := NewEngine(r)
	rng := randutil.New(7)
	s := e.NewShoeState(rng, UniformBets(3, ten), decimal.NewFromInt(10000))

	for round := 0; round < 40; round++ {
		if e.NeedsReshuffle(s) {
			s = e.Reshuffle(s, rng)
			assert.Equal(t, 0, s.RunningCount)
		}
		var err error
		s, err = e.Deal(s)
		require.NoError(t, err)
		if s.Phase == Insurance {
			s = e.Insure(s, false)
		}
		for s.Phase == PlayerAction {
			h, _ := s.ActiveHand()
			if h.AwaitingCard {
				s, err = e.DealToHand(s, s.Active)
				require.NoError(t, err)
				continue
			}
			if !h.Complete {
				up, _ := s.DealerUp()
				rec := strategy.Recommend(h.Cards, up, r, e.Capabilities(s))
				s, err = apply(e, s, rec.Action)
				require.NoError(t, err)
			}
			s = e.Advance(s)
		}
		s, err = e.Resolve(s)
		require.NoError(t, err)
		require.Equal(t, Payout, s.Phase)
		require.True(t, s.ShoeConsistent())

		for _, c := range s.Dealer.Cards {
			assert.False(t, c.FaceDown)
		}
		assert.GreaterOrEqual(t, len(allCards(s.Hands)), 2*s.Seats())
	}
}

func apply(e *Engine, s State, a strategy.Action) (State, error) {
	switch a {
	case strategy.Hit:
		return e.Hit(s)
	case strategy.Double:
		return e.Double(s)
	case strategy.Split:
		return e.Split(s), nil
	case strategy.Surrender:
		return e.Surrender(s), nil
	default:
		return e.Stand(s), nil
	}
}

func allCards(hands []Hand) []deck.Card {
	var out []deck.Card
	for _, h := range hands {
		out = append(out, h.Cards...)
	}
	return out
}
