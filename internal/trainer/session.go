package trainer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/lox/bjtrainer/internal/round"
	"github.com/lox/bjtrainer/internal/strategy"
)

// ErrIllegalAction is returned when the chosen action is not available.
var ErrIllegalAction = errors.New("action not available")

const defaultHistory = 200

// Recorder receives every graded decision.
type Recorder interface {
	Record(ctx context.Context, d Decision) error
}

type checkpoint struct {
	state  round.State
	stats  Stats
	loaded bool
}

// Session is one player's practice session: a table state, the undo history
// and the accuracy statistics.
type Session struct {
	engine   *round.Engine
	rng      *rand.Rand
	state    round.State
	stats    Stats
	history  []checkpoint
	limit    int
	recorder Recorder
	logger   *log.Logger

	// pacedDealer leaves the dealer turn to StepDealer.
	pacedDealer bool
	// loaded marks a table installed by Load that has not been dealt yet;
	// its first deal skips the penetration check.
	loaded bool
}

// Option configures a Session.
type Option func(*Session)

// WithRecorder records every graded decision.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		s.logger = logger.WithPrefix("trainer")
	}
}

// WithHistoryLimit bounds the undo history.
func WithHistoryLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithPacedDealer stops at the dealer turn so a caller can reveal dealer
// cards one StepDealer at a time.
func WithPacedDealer() Option {
	return func(s *Session) {
		s.pacedDealer = true
	}
}

// WithState starts the session from an existing table, such as a restored
// snapshot or a constructed scenario.
func WithState(st round.State) Option {
	return func(s *Session) {
		s.state = st
	}
}

// NewSession creates a session on a freshly shuffled shoe.
func NewSession(e *round.Engine, rng *rand.Rand, seats int, bet, bankroll decimal.Decimal, opts ...Option) *Session {
	if rng == nil {
		panic("rng is required for a session")
	}
	s := &Session{
		engine: e,
		rng:    rng,
		state:  e.NewShoeState(rng, round.UniformBets(seats, bet), bankroll),
		limit:  defaultHistory,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current table.
func (s *Session) State() round.State {
	return s.state
}

// Engine returns the session's engine.
func (s *Session) Engine() *round.Engine {
	return s.engine
}

// Stats returns the accuracy statistics.
func (s *Session) Stats() Stats {
	return s.stats
}

// TrueCount returns the true count visible now.
func (s *Session) TrueCount() float64 {
	return s.engine.TrueCount(s.state)
}

// CanUndo reports whether there is a checkpoint to return to.
func (s *Session) CanUndo() bool {
	return len(s.history) > 0
}

// Undo restores the table and statistics from before the last Deal, Act or
// Load.
func (s *Session) Undo() bool {
	if len(s.history) == 0 {
		return false
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.state = last.state
	s.stats = last.stats
	s.loaded = last.loaded
	return true
}

func (s *Session) checkpoint() {
	s.history = append(s.history, checkpoint{state: s.state, stats: s.stats, loaded: s.loaded})
	if len(s.history) > s.limit {
		s.history = slices.Delete(s.history, 0, len(s.history)-s.limit)
	}
}

// Load replaces the table, for example with a constructed scenario. The
// loaded shoe is dealt as is on the next Deal even when it is already past
// the penetration point.
func (s *Session) Load(st round.State) {
	s.checkpoint()
	s.state = st
	s.loaded = true
}

// SetBet changes every seat's bet for the next round.
func (s *Session) SetBet(bet decimal.Decimal) error {
	if s.state.Phase != round.Idle && s.state.Phase != round.Payout {
		return fmt.Errorf("cannot change bet during %s", s.state.Phase)
	}
	s.state.Bets = round.UniformBets(s.state.Seats(), bet)
	return nil
}

// Deal starts the next round, reshuffling first when the shoe has passed
// the penetration point or cannot cover the initial deal.
func (s *Session) Deal() error {
	st := s.state
	if st.Phase != round.Idle && st.Phase != round.Payout {
		return fmt.Errorf("cannot deal during %s", st.Phase)
	}
	short := st.Shoe.Len() < 2*st.Seats()+2
	if short || (!s.loaded && s.engine.NeedsReshuffle(st)) {
		st = s.engine.Reshuffle(st, s.rng)
		s.logger.Info("Shuffled a new shoe", "cards", st.Shoe.Len())
	}
	next, err := s.engine.Deal(st)
	if err != nil {
		return fmt.Errorf("deal: %w", err)
	}
	s.checkpoint()
	s.state = next
	s.loaded = false
	return s.settle()
}

// draw runs a transition that takes cards, continuing from a replenished
// shoe when the current one runs out mid-round.
func (s *Session) draw(st round.State, step func(round.State) (round.State, error)) (round.State, error) {
	next, err := step(st)
	if !errors.Is(err, round.ErrShoeExhausted) {
		return next, err
	}
	st = s.engine.Replenish(st, s.rng)
	s.logger.Info("Shoe ran out mid-round, continuing from a fresh shoe", "cards", st.Shoe.Len())
	return step(st)
}

// Act grades and applies the player's action. Split cards, advancement and
// the dealer turn are handled automatically afterwards.
func (s *Session) Act(ctx context.Context, a strategy.Action) (Decision, error) {
	if !slices.Contains(s.engine.Legal(s.state), a) {
		return Decision{}, fmt.Errorf("%w: %s during %s", ErrIllegalAction, a, s.state.Phase)
	}
	d, err := Grade(s.engine, s.state, a)
	if err != nil {
		return Decision{}, err
	}

	next, err := s.apply(a)
	if err != nil {
		return Decision{}, err
	}
	s.checkpoint()
	s.state = next
	s.stats.Add(d)

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, d); err != nil {
			s.logger.Error("Failed to record decision", "error", err)
		}
	}
	s.logger.Debug("Graded decision", "chosen", a, "expected", d.Expected, "correct", d.Correct, "tc", d.TrueCount)

	if err := s.settle(); err != nil {
		return d, err
	}
	return d, nil
}

func (s *Session) apply(a strategy.Action) (round.State, error) {
	e, st := s.engine, s.state
	switch a {
	case strategy.Insure:
		return e.Insure(st, true), nil
	case strategy.DeclineInsurance:
		return e.Insure(st, false), nil
	case strategy.Hit:
		return s.draw(st, e.Hit)
	case strategy.Stand:
		return e.Stand(st), nil
	case strategy.Double:
		return s.draw(st, e.Double)
	case strategy.Split:
		return e.Split(st), nil
	case strategy.Surrender:
		return e.Surrender(st), nil
	default:
		return st, fmt.Errorf("%w: %s", ErrIllegalAction, a)
	}
}

// settle runs everything that needs no decision: second cards for split
// hands, advancing past completed hands and, unless paced, the dealer.
func (s *Session) settle() error {
	st := s.state
	var err error
	for st.Phase == round.PlayerAction {
		h, ok := st.ActiveHand()
		if ok && h.AwaitingCard {
			st, err = s.draw(st, func(st round.State) (round.State, error) {
				return s.engine.DealToHand(st, st.Active)
			})
			if err != nil {
				return fmt.Errorf("split card: %w", err)
			}
			continue
		}
		if ok && !h.Complete {
			break
		}
		st = s.engine.Advance(st)
	}
	s.state = st
	if st.Phase == round.DealerTurn && !s.pacedDealer {
		return s.finish()
	}
	return nil
}

// StepDealer performs one dealer step and resolves the round once the
// dealer is done. It reports whether the round is over.
func (s *Session) StepDealer() (bool, error) {
	if s.state.Phase != round.DealerTurn {
		return s.state.Phase == round.Payout, nil
	}
	if s.state.DealerDone {
		return true, s.finish()
	}
	next, err := s.draw(s.state, s.engine.DealerStep)
	if err != nil {
		return false, fmt.Errorf("dealer: %w", err)
	}
	s.state = next
	return false, nil
}

func (s *Session) finish() error {
	next, err := s.draw(s.state, s.engine.Resolve)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}
	s.state = next
	s.stats.Rounds++
	s.logger.Debug("Round settled", "bankroll", next.Bankroll, "rc", next.RunningCount)
	return nil
}
