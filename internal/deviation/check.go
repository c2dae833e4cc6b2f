package deviation

import (
	"fmt"

	"github.com/lox/bjtrainer/internal/strategy"
)

// Query describes the decision being checked.
type Query struct {
	Total int
	Soft  bool
	// EligiblePair is set for a two-card pair that can still be split.
	EligiblePair     bool
	PairValue        int
	DealerUp         int
	TrueCount        float64
	SurrenderAllowed bool
}

// Result is the outcome of a deviation check. When Matched is false the
// remaining fields are zero and basic strategy stands.
type Result struct {
	Matched         bool
	OverrideApplies bool
	Action          strategy.Action
	Reason          string
	Deviation       Deviation
}

// Check finds the first deviation structurally matching q and reports
// whether the true count triggers its override.
func Check(q Query) Result {
	if d, ok := find(primary, q); ok {
		return result(d, q.TrueCount)
	}
	if q.SurrenderAllowed {
		if d, ok := find(surrender, q); ok {
			return result(d, q.TrueCount)
		}
	}
	return Result{}
}

// CheckInsurance applies the insurance rule for a dealer upcard value.
func CheckInsurance(dealerUp int, tc float64) Result {
	if dealerUp != insurance.DealerUp {
		return Result{}
	}
	return result(insurance, tc)
}

func find(set []Deviation, q Query) (Deviation, bool) {
	for _, d := range set {
		if d.matches(q) {
			return d, true
		}
	}
	return Deviation{}, false
}

func result(d Deviation, tc float64) Result {
	r := Result{Matched: true, Deviation: d}
	if d.Applies(tc) {
		r.OverrideApplies = true
		r.Action = d.Action
		r.Reason = fmt.Sprintf("%s (TC %+.1f)", d, tc)
		return r
	}
	r.Action = d.Basic
	r.Reason = fmt.Sprintf("%s; TC %+.1f does not reach it, %s", d, tc, d.Basic)
	return r
}
