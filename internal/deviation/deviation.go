// Package deviation holds the count-based departures from basic strategy and
// matches hands against them.
package deviation

import (
	"fmt"

	"github.com/lox/bjtrainer/internal/strategy"
)

// Deviation is one count-threshold override. A deviation matches either an
// exact pair (Pair > 0) or an exact total and softness, always against an
// exact dealer upcard value (2..11, Ace is 11).
type Deviation struct {
	Name      string
	Pair      int
	Total     int
	Soft      bool
	DealerUp  int
	Threshold float64
	Action    strategy.Action
	Basic     strategy.Action
	Surrender bool
	Insurance bool
}

// Applies reports whether tc reaches the threshold. Non-negative thresholds
// fire at or above; negative ones at or below.
func (d Deviation) Applies(tc float64) bool {
	if d.Threshold >= 0 {
		return tc >= d.Threshold
	}
	return tc <= d.Threshold
}

// IsPair reports whether the deviation is keyed on a pair.
func (d Deviation) IsPair() bool {
	return d.Pair > 0
}

func (d Deviation) matches(q Query) bool {
	if d.Insurance || q.DealerUp != d.DealerUp {
		return false
	}
	if d.IsPair() {
		return q.EligiblePair && q.PairValue == d.Pair
	}
	if q.EligiblePair {
		return false
	}
	return q.Total == d.Total && q.Soft == d.Soft
}

func (d Deviation) String() string {
	op := "≥"
	if d.Threshold < 0 {
		op = "≤"
	}
	return fmt.Sprintf("%s: %s at TC %s %+g", d.Name, d.Action, op, d.Threshold)
}

var insurance = Deviation{
	Name:      "Insurance",
	DealerUp:  11,
	Threshold: 3,
	Action:    strategy.Insure,
	Basic:     strategy.DeclineInsurance,
	Insurance: true,
}

// Ordered; the first structural match wins.
var primary = []Deviation{
	{Name: "16 vs 10", Total: 16, DealerUp: 10, Threshold: 0, Action: strategy.Stand, Basic: strategy.Hit},
	{Name: "15 vs 10", Total: 15, DealerUp: 10, Threshold: 4, Action: strategy.Stand, Basic: strategy.Hit},
	{Name: "T,T vs 5", Pair: 10, Total: 20, DealerUp: 5, Threshold: 5, Action: strategy.Split, Basic: strategy.Stand},
	{Name: "T,T vs 6", Pair: 10, Total: 20, DealerUp: 6, Threshold: 4, Action: strategy.Split, Basic: strategy.Stand},
	{Name: "10 vs 10", Total: 10, DealerUp: 10, Threshold: 4, Action: strategy.Double, Basic: strategy.Hit},
	{Name: "12 vs 3", Total: 12, DealerUp: 3, Threshold: 2, Action: strategy.Stand, Basic: strategy.Hit},
	{Name: "12 vs 2", Total: 12, DealerUp: 2, Threshold: 3, Action: strategy.Stand, Basic: strategy.Hit},
	{Name: "11 vs A", Total: 11, DealerUp: 11, Threshold: 1, Action: strategy.Double, Basic: strategy.Hit},
	{Name: "9 vs 2", Total: 9, DealerUp: 2, Threshold: 1, Action: strategy.Double, Basic: strategy.Hit},
	{Name: "10 vs A", Total: 10, DealerUp: 11, Threshold: 4, Action: strategy.Double, Basic: strategy.Hit},
	{Name: "9 vs 7", Total: 9, DealerUp: 7, Threshold: 3, Action: strategy.Double, Basic: strategy.Hit},
	{Name: "16 vs 9", Total: 16, DealerUp: 9, Threshold: 5, Action: strategy.Stand, Basic: strategy.Hit},
	{Name: "13 vs 2", Total: 13, DealerUp: 2, Threshold: -1, Action: strategy.Hit, Basic: strategy.Stand},
	// Action and Basic are both stand although the name says to hit below
	// zero. Kept as recorded until the rule table owner confirms the entry.
	{Name: "12 vs 4: hit below 0", Total: 12, DealerUp: 4, Threshold: 0, Action: strategy.Stand, Basic: strategy.Stand},
	{Name: "12 vs 5", Total: 12, DealerUp: 5, Threshold: -2, Action: strategy.Hit, Basic: strategy.Stand},
	{Name: "12 vs 6", Total: 12, DealerUp: 6, Threshold: -1, Action: strategy.Hit, Basic: strategy.Stand},
	{Name: "13 vs 3", Total: 13, DealerUp: 3, Threshold: -2, Action: strategy.Hit, Basic: strategy.Stand},
}

// Only consulted when surrender is allowed.
var surrender = []Deviation{
	{Name: "14 vs 10", Total: 14, DealerUp: 10, Threshold: 3, Action: strategy.Surrender, Basic: strategy.Hit, Surrender: true},
	{Name: "15 vs 10", Total: 15, DealerUp: 10, Threshold: 0, Action: strategy.Surrender, Basic: strategy.Hit, Surrender: true},
	{Name: "15 vs 9", Total: 15, DealerUp: 9, Threshold: 2, Action: strategy.Surrender, Basic: strategy.Hit, Surrender: true},
	{Name: "15 vs A", Total: 15, DealerUp: 11, Threshold: 1, Action: strategy.Surrender, Basic: strategy.Hit, Surrender: true},
}

// All returns every deviation: insurance first, then the primary set, then
// the surrender set. Scenario construction addresses deviations by their
// index in this list.
func All() []Deviation {
	out := make([]Deviation, 0, 1+len(primary)+len(surrender))
	out = append(out, insurance)
	out = append(out, primary...)
	out = append(out, surrender...)
	return out
}

// Get returns the deviation at index i of All.
func Get(i int) (Deviation, bool) {
	all := All()
	if i < 0 || i >= len(all) {
		return Deviation{}, false
	}
	return all[i], true
}
