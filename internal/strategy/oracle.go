// Package strategy implements the basic strategy oracle: given a player's
// cards, the dealer upcard, the table rules and what the hand may still do,
// it recommends the chart action.
package strategy

import (
	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/rules"
)

// Capabilities describes the actions still available to a specific hand.
type Capabilities struct {
	CanDouble    bool
	CanSplit     bool
	CanSurrender bool
}

// Recommendation is the oracle's answer for one decision.
type Recommendation struct {
	Action   Action
	HandType HandType
	Total    int
	IsSoft   bool
	DealerUp int
	// Code is the chart code the action was resolved from.
	Code string
}

// Recommend returns the basic strategy action for cards against the dealer
// upcard. Chart codes that name an unavailable action fall back to their
// alternate, so the result is always legal for caps.
func Recommend(cards []deck.Card, up deck.Card, r rules.Rules, caps Capabilities) Recommendation {
	total, soft := handTotal(cards)
	upVal := up.Value()
	rec := Recommendation{Total: total, IsSoft: soft, DealerUp: upVal}

	if len(cards) == 2 && cards[0].SameValue(cards[1]) {
		c := lookup(Pair, cards[0].Value(), upVal, r)
		split := caps.CanSplit && (c == codeSplit || (c == codeSplitDAS && r.DoubleAfterSplit))
		if split {
			rec.HandType = Pair
			rec.Action = Split
			rec.Code = c.String()
			return rec
		}
	}

	kind := Hard
	if soft {
		kind = Soft
	}
	c := lookup(kind, total, upVal, r)
	rec.HandType = kind
	rec.Action = resolve(c, r, caps)
	rec.Code = c.String()
	return rec
}

func resolve(c code, r rules.Rules, caps Capabilities) Action {
	surrender := r.Surrender && caps.CanSurrender
	switch c {
	case codeDouble:
		if caps.CanDouble {
			return Double
		}
		return Hit
	case codeDoubleStand:
		if caps.CanDouble {
			return Double
		}
		return Stand
	case codeSurrenderHit:
		if surrender {
			return Surrender
		}
		return Hit
	case codeSurrenderStand:
		if surrender {
			return Surrender
		}
		return Stand
	case codeStand:
		return Stand
	default:
		return Hit
	}
}

func handTotal(cards []deck.Card) (int, bool) {
	total, aces := 0, 0
	for _, c := range cards {
		total += c.Value()
		if c.IsAce() {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0 && total <= 21
}
