package trainer

import (
	"errors"
	"fmt"

	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/deviation"
	"github.com/lox/bjtrainer/internal/round"
	"github.com/lox/bjtrainer/internal/strategy"
)

// ErrNoDecision is returned when the state is not waiting on the player.
var ErrNoDecision = errors.New("no decision pending")

// Decision is a graded player choice.
type Decision struct {
	Insurance    bool
	Hand         int
	Cards        string
	DealerUp     deck.Card
	Total        int
	Soft         bool
	RunningCount int
	TrueCount    float64

	Chosen   strategy.Action
	Expected strategy.Action
	// Basic is the chart action; Expected differs from it only when a
	// deviation override applies.
	Basic     strategy.Action
	Code      string
	Deviation deviation.Result
	Correct   bool
}

// IsDeviationSpot reports whether the count changed the correct play.
func (d Decision) IsDeviationSpot() bool {
	return d.Deviation.OverrideApplies && d.Expected != d.Basic
}

// Explain returns a one-line explanation of the expected action.
func (d Decision) Explain() string {
	if d.Deviation.Matched && (d.Insurance || d.IsDeviationSpot()) {
		return d.Deviation.Reason
	}
	if d.Insurance {
		return fmt.Sprintf("no insurance below TC +3 (TC %+.1f)", d.TrueCount)
	}
	soft := "hard"
	if d.Soft {
		soft = "soft"
	}
	return fmt.Sprintf("basic strategy: %s %d vs %s is %s (%s)", soft, d.Total, d.DealerUp, d.Expected, d.Code)
}

// Advise returns the correct action for the pending decision without
// grading a choice.
func Advise(e *round.Engine, s round.State) (Decision, error) {
	switch s.Phase {
	case round.Insurance:
		return adviseInsurance(e, s)
	case round.PlayerAction:
		return advisePlay(e, s)
	default:
		return Decision{}, ErrNoDecision
	}
}

// Grade judges chosen against basic strategy and the deviation table at
// the count visible now.
func Grade(e *round.Engine, s round.State, chosen strategy.Action) (Decision, error) {
	d, err := Advise(e, s)
	if err != nil {
		return Decision{}, err
	}
	d.Chosen = chosen
	d.Correct = chosen == d.Expected
	return d, nil
}

func adviseInsurance(e *round.Engine, s round.State) (Decision, error) {
	up, ok := s.DealerUp()
	if !ok {
		return Decision{}, ErrNoDecision
	}
	tc := e.TrueCount(s)
	res := deviation.CheckInsurance(up.Value(), tc)
	return Decision{
		Insurance:    true,
		Hand:         -1,
		DealerUp:     up,
		RunningCount: s.RunningCount,
		TrueCount:    tc,
		Expected:     res.Action,
		Basic:        strategy.DeclineInsurance,
		Deviation:    res,
	}, nil
}

func advisePlay(e *round.Engine, s round.State) (Decision, error) {
	h, ok := s.ActiveHand()
	up, upOK := s.DealerUp()
	if !ok || !upOK || h.Complete || h.AwaitingCard {
		return Decision{}, ErrNoDecision
	}
	r := e.Rules()
	caps := e.Capabilities(s)
	tc := e.TrueCount(s)

	rec := strategy.Recommend(h.Cards, up, r, caps)
	res := deviation.Check(deviation.Query{
		Total:            h.Total(),
		Soft:             h.IsSoft(),
		EligiblePair:     h.EligiblePair() && caps.CanSplit,
		PairValue:        h.PairValue(),
		DealerUp:         up.Value(),
		TrueCount:        tc,
		SurrenderAllowed: r.Surrender && caps.CanSurrender,
	})

	expected := rec.Action
	if res.OverrideApplies && available(res.Action, caps) {
		expected = res.Action
	}

	return Decision{
		Hand:         s.Active,
		Cards:        h.String(),
		DealerUp:     up,
		Total:        h.Total(),
		Soft:         h.IsSoft(),
		RunningCount: s.RunningCount,
		TrueCount:    tc,
		Expected:     expected,
		Basic:        rec.Action,
		Code:         rec.Code,
		Deviation:    res,
	}, nil
}

func available(a strategy.Action, caps strategy.Capabilities) bool {
	switch a {
	case strategy.Double:
		return caps.CanDouble
	case strategy.Split:
		return caps.CanSplit
	case strategy.Surrender:
		return caps.CanSurrender
	case strategy.Hit, strategy.Stand:
		return true
	default:
		return false
	}
}
