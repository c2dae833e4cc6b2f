package scenario

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/lox/bjtrainer/internal/count"
	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/round"
)

// TargetShoe is a remaining shoe whose discards produce the requested true
// count.
type TargetShoe struct {
	Shoe         deck.Shoe
	RunningCount int
	TrueCount    float64
	// Discarded is the number of cards already gone from the full shoe.
	Discarded int
	Method    count.Method
	// Simulated is false when the shoe came from bucket construction.
	Simulated bool
}

// State returns an idle table positioned on the target shoe.
func (t *TargetShoe) State(bets []decimal.Decimal, bankroll decimal.Decimal) round.State {
	s := round.NewState(t.Shoe, t.Shoe.Len()+t.Discarded, bets, bankroll)
	s.RunningCount = t.RunningCount
	return s
}

// ForTargetTC builds a remaining shoe of a numDecks shoe whose true count,
// estimated with m, matches target: within the tolerance for Perfect, and
// exactly for the quantized methods. Forward simulation is tried first;
// bucket construction is the fallback.
func (b *Builder) ForTargetTC(target float64, numDecks int, m count.Method) (*TargetShoe, error) {
	if numDecks < 1 {
		return nil, fmt.Errorf("%w: need at least one deck", ErrConstructionFailed)
	}
	if !representable(target, m) {
		return nil, fmt.Errorf("%w: %v cannot show a true count of %g", ErrConstructionFailed, m, target)
	}
	if ts, ok := b.simulate(target, numDecks, m); ok {
		return ts, nil
	}
	b.logger.Debug("Forward simulation exhausted, building from buckets", "target", target, "decks", numDecks, "method", m)
	if ts, ok := b.buckets(target, numDecks, m); ok {
		return ts, nil
	}
	return nil, fmt.Errorf("%w: true count %+g with %d decks", ErrConstructionFailed, target, numDecks)
}

func representable(target float64, m count.Method) bool {
	switch m {
	case count.FullDeck:
		return target == math.Trunc(target)
	case count.HalfDeck:
		return target*2 == math.Trunc(target*2)
	default:
		return !math.IsNaN(target) && !math.IsInf(target, 0)
	}
}

// reserve is the number of cards that must stay in the shoe: two decks, or
// half of a smaller shoe.
func reserve(total int) int {
	return min(2*deck.CardsPerDeck, total/2)
}

func (b *Builder) hit(tc, target float64, m count.Method) bool {
	if m == count.Perfect {
		return math.Abs(tc-target) <= b.tolerance
	}
	return tc == target
}

func overshot(tc, target float64) bool {
	return (target >= 0 && tc > target+overshootMargin) || (target <= 0 && tc < target-overshootMargin)
}

// simulate deals shuffled shoes card by card until the estimated true count
// lands on the target.
func (b *Builder) simulate(target float64, numDecks int, m count.Method) (*TargetShoe, bool) {
	for attempt := 0; attempt < simulationAttempts; attempt++ {
		cards := deck.NewShoe(b.rng, numDecks).Cards()
		keep := reserve(len(cards))
		rc := 0
		for i, c := range cards {
			remaining := len(cards) - i - 1
			if remaining < keep {
				break
			}
			rc += c.HiLo()
			tc := count.TrueCount(rc, remaining, m)
			if b.hit(tc, target, m) {
				b.logger.Debug("Simulated target shoe", "attempt", attempt, "dealt", i+1, "rc", rc, "tc", tc)
				return &TargetShoe{
					Shoe:         deck.FromCards(cards[i+1:]),
					RunningCount: rc,
					TrueCount:    tc,
					Discarded:    i + 1,
					Method:       m,
					Simulated:    true,
				}, true
			}
			if m == count.Perfect && overshot(tc, target) {
				break
			}
		}
	}
	return nil, false
}

// buckets removes a chosen mix of low, neutral and high cards from a full
// shoe so that the removed cards carry exactly the running count the target
// needs at the chosen remaining size.
func (b *Builder) buckets(target float64, numDecks int, m count.Method) (*TargetShoe, bool) {
	full := numDecks * deck.CardsPerDeck
	lo := reserve(full)
	hi := max(lo, min(3*deck.CardsPerDeck, full*3/4))

	for attempt := 0; attempt < bucketAttempts; attempt++ {
		size := lo + b.rng.IntN(hi-lo+1)
		rc := int(math.Round(target * count.DecksRemaining(size, m)))
		tc := count.TrueCount(rc, size, m)
		if !b.hit(tc, target, m) {
			continue
		}
		low, neutral, high, ok := removalMix(rc, full-size, numDecks)
		if !ok {
			continue
		}

		var lows, neutrals, highs []deck.Card
		for _, c := range deck.NewShoe(b.rng, numDecks).Cards() {
			switch c.HiLo() {
			case 1:
				lows = append(lows, c)
			case -1:
				highs = append(highs, c)
			default:
				neutrals = append(neutrals, c)
			}
		}
		rest := make([]deck.Card, 0, size)
		rest = append(rest, lows[low:]...)
		rest = append(rest, neutrals[neutral:]...)
		rest = append(rest, highs[high:]...)
		deck.Shuffle(b.rng, rest)

		b.logger.Debug("Built target shoe from buckets", "size", size, "rc", rc, "tc", tc)
		return &TargetShoe{
			Shoe:         deck.FromCards(rest),
			RunningCount: rc,
			TrueCount:    tc,
			Discarded:    full - size,
			Method:       m,
		}, true
	}
	return nil, false
}

// removalMix picks how many low (+1), neutral and high (-1) cards to remove
// so that exactly n cards carrying running count rc are gone. Cards that
// move the count toward rc are taken first, neutrals fill the rest, and any
// remainder is taken as balanced low/high pairs.
func removalMix(rc, n, numDecks int) (low, neutral, high int, ok bool) {
	lowAvail := 20 * numDecks
	neutralAvail := 12 * numDecks
	highAvail := 20 * numDecks

	if rc > 0 {
		low = rc
	} else {
		high = -rc
	}
	rest := n - low - high
	if rest < 0 {
		return 0, 0, 0, false
	}
	neutral = min(rest, neutralAvail)
	rest -= neutral
	if rest%2 == 1 {
		if neutral == 0 {
			return 0, 0, 0, false
		}
		neutral--
		rest++
	}
	low += rest / 2
	high += rest / 2
	if low > lowAvail || high > highAvail {
		return 0, 0, 0, false
	}
	return low, neutral, high, true
}
