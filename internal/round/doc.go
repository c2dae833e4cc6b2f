// Package round implements the blackjack round state machine.
//
// The main type is State, a value holding the shoe, the dealer and player
// hands, the running count and the bankroll. An Engine applies transitions
// to a State and returns a new one; the input is never modified, so keeping
// the previous value is all an undo needs.
//
// # Basic Usage
//
//	e := round.NewEngine(rules.Default())
//	s := e.NewShoeState(randutil.New(42), round.UniformBets(1, bet), bankroll)
//	s, err := e.Deal(s)
//	if s.Phase == round.Insurance {
//	    s = e.Insure(s, false)
//	}
//	for s.Phase == round.PlayerAction {
//	    s = e.Advance(e.Stand(s))
//	}
//	s, err = e.Resolve(s)
//
// # Phases
//
// A round moves idle → dealing → insurance | player-action | dealer-turn →
// payout. Calls made in the wrong phase, against a completed hand, or
// without the needed capability return the input unchanged. Operations
// that draw return ErrShoeExhausted when the shoe runs out; callers check
// NeedsReshuffle between rounds to avoid that.
//
// # Count Timing
//
// Face-up cards are counted as they are dealt. The dealer's hole card is
// counted when DealerStep reveals it, so the count a player sees while
// deciding never includes it.
package round
