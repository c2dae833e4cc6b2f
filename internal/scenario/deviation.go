package scenario

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lox/bjtrainer/internal/count"
	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/deviation"
	"github.com/lox/bjtrainer/internal/round"
)

// DeviationScenario is a shoe arranged so that the next deal puts Seat in
// the deviation's situation with a true count past its threshold.
type DeviationScenario struct {
	Index     int
	Deviation deviation.Deviation
	Seats     int
	Seat      int
	// Shoe is dealt from the front in the engine's deal order.
	Shoe         deck.Shoe
	ShoeSize     int
	RunningCount int
	// TrueCount is the count visible at the seat's first decision, before
	// the hole card is revealed.
	TrueCount float64
	Player    [2]deck.Card
	Up        deck.Card
}

// State returns an idle table that deals the scenario next.
func (d *DeviationScenario) State(bet, bankroll decimal.Decimal) round.State {
	s := round.NewState(d.Shoe, d.ShoeSize, round.UniformBets(d.Seats, bet), bankroll)
	s.RunningCount = d.RunningCount
	return s
}

// ForDeviation builds a scenario for the deviation at index in
// deviation.All. The rightmost seat, which acts first, receives the
// deviation's hand; other seats get random cards.
func (b *Builder) ForDeviation(index, numDecks int, m count.Method, seats int) (*DeviationScenario, error) {
	dev, ok := deviation.Get(index)
	if !ok {
		return nil, fmt.Errorf("%w: no deviation %d", ErrConstructionFailed, index)
	}
	if seats < 1 || seats > round.MaxSeats {
		return nil, fmt.Errorf("%w: %d seats", ErrConstructionFailed, seats)
	}

	// Aim one step past the threshold so filler cards rarely undo it.
	target := dev.Threshold + 1
	if dev.Threshold < 0 {
		target = dev.Threshold - 1
	}

	for attempt := 0; attempt < deviationAttempts; attempt++ {
		ts, err := b.ForTargetTC(target, numDecks, m)
		if err != nil {
			continue
		}
		sc, ok := b.arrange(ts, dev, seats, m)
		if !ok {
			continue
		}
		sc.Index = index
		b.logger.Debug("Built deviation scenario", "deviation", dev.Name, "attempt", attempt, "tc", sc.TrueCount)
		return sc, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrConstructionFailed, dev.Name)
}

// arrange carves the seat's cards, the upcard and a safe hole card out of the
// target shoe and interleaves them in deal order.
func (b *Builder) arrange(ts *TargetShoe, dev deviation.Deviation, seats int, m count.Method) (*DeviationScenario, bool) {
	pool := ts.Shoe.Cards()
	seat := seats - 1

	player, pool, ok := b.playerCards(pool, dev)
	if !ok {
		return nil, false
	}
	up, pool, ok := take(pool, func(c deck.Card) bool { return c.Value() == dev.DealerUp })
	if !ok {
		return nil, false
	}
	hole, pool, ok := take(pool, func(c deck.Card) bool {
		return !(up.IsAce() && c.IsTen()) && !(up.IsTen() && c.IsAce())
	})
	if !ok {
		return nil, false
	}

	first := make([]deck.Card, seats)
	second := make([]deck.Card, seats)
	first[seat], second[seat] = player[0], player[1]
	for i := 0; i < seat; i++ {
		if len(pool) < 2 {
			return nil, false
		}
		first[i], second[i] = pool[0], pool[1]
		pool = pool[2:]
		// A filler natural would suppress the insurance offer.
		if dev.Insurance && first[i].Value()+second[i].Value() == 21 {
			return nil, false
		}
	}

	ordered := make([]deck.Card, 0, len(pool)+2*seats+2)
	ordered = append(ordered, first...)
	ordered = append(ordered, hole)
	ordered = append(ordered, second...)
	ordered = append(ordered, up)
	ordered = append(ordered, pool...)

	visible := ts.RunningCount + up.HiLo()
	for i := range seats {
		visible += first[i].HiLo() + second[i].HiLo()
	}
	tc := count.TrueCount(visible, len(pool), m)
	if !dev.Applies(tc) {
		return nil, false
	}

	return &DeviationScenario{
		Deviation:    dev,
		Seats:        seats,
		Seat:         seat,
		Shoe:         deck.FromCards(ordered),
		ShoeSize:     len(ordered) + ts.Discarded,
		RunningCount: ts.RunningCount,
		TrueCount:    tc,
		Player:       player,
		Up:           up,
	}, true
}

// playerCards picks the seat's starting hand: the exact pair, an ace and a
// kicker for a soft total, or two different ace-free cards for a hard total.
// Insurance has no hand shape and takes any two cards short of a natural.
func (b *Builder) playerCards(pool []deck.Card, dev deviation.Deviation) ([2]deck.Card, []deck.Card, bool) {
	var a, c deck.Card
	var ok bool
	switch {
	case dev.Insurance:
		a, pool, ok = take(pool, func(deck.Card) bool { return true })
		if !ok {
			return [2]deck.Card{}, pool, false
		}
		c, pool, ok = take(pool, func(x deck.Card) bool { return a.Value()+x.Value() != 21 })
	case dev.IsPair():
		a, pool, ok = take(pool, valueIs(dev.Pair))
		if !ok {
			return [2]deck.Card{}, pool, false
		}
		c, pool, ok = take(pool, valueIs(dev.Pair))
	case dev.Soft:
		a, pool, ok = take(pool, deck.Card.IsAce)
		if !ok {
			return [2]deck.Card{}, pool, false
		}
		c, pool, ok = take(pool, valueIs(dev.Total-11))
	default:
		x, y, found := b.splitTotal(dev.Total)
		if !found {
			return [2]deck.Card{}, pool, false
		}
		a, pool, ok = take(pool, valueIs(x))
		if !ok {
			return [2]deck.Card{}, pool, false
		}
		c, pool, ok = take(pool, valueIs(y))
	}
	return [2]deck.Card{a, c}, pool, ok
}

// splitTotal picks two different ace-free card values summing to total.
func (b *Builder) splitTotal(total int) (int, int, bool) {
	var options [][2]int
	for x := 2; x <= 10; x++ {
		y := total - x
		if y > x && y <= 10 {
			options = append(options, [2]int{x, y})
		}
	}
	if len(options) == 0 {
		return 0, 0, false
	}
	o := options[b.rng.IntN(len(options))]
	if b.rng.IntN(2) == 0 {
		return o[0], o[1], true
	}
	return o[1], o[0], true
}

func valueIs(v int) func(deck.Card) bool {
	return func(c deck.Card) bool { return c.Value() == v }
}

// take removes the first card in pool matching pred. The input slice is not
// modified.
func take(pool []deck.Card, pred func(deck.Card) bool) (deck.Card, []deck.Card, bool) {
	for i, c := range pool {
		if pred(c) {
			rest := make([]deck.Card, 0, len(pool)-1)
			rest = append(rest, pool[:i]...)
			rest = append(rest, pool[i+1:]...)
			return c, rest, true
		}
	}
	return deck.Card{}, pool, false
}
