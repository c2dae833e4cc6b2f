package round

import (
	"errors"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/lox/bjtrainer/internal/count"
	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/rules"
	"github.com/lox/bjtrainer/internal/strategy"
)

// ErrShoeExhausted is returned when an operation needs more cards than the
// shoe holds. The input state is returned unchanged alongside it.
var ErrShoeExhausted = errors.New("shoe exhausted")

// Engine applies the table rules to States. It holds no round state of its
// own and is safe for concurrent use.
type Engine struct {
	rules  rules.Rules
	logger *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for transition tracing.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.WithPrefix("round")
	}
}

// NewEngine creates an engine for the given rules.
func NewEngine(r rules.Rules, opts ...Option) *Engine {
	e := &Engine{
		rules:  r,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() rules.Rules {
	return e.rules
}

// NewShoeState shuffles a fresh shoe and returns an idle table around it.
func (e *Engine) NewShoeState(rng *rand.Rand, bets []decimal.Decimal, bankroll decimal.Decimal) State {
	shoe := deck.NewShoe(rng, e.rules.Decks)
	return NewState(shoe, e.rules.ShoeSize(), bets, bankroll)
}

// TrueCount converts the running count with the configured method.
func (e *Engine) TrueCount(s State) float64 {
	return count.TrueCount(s.RunningCount, s.Shoe.Len(), e.rules.CountMethod)
}

// NeedsReshuffle reports whether the shoe has passed the penetration point.
func (e *Engine) NeedsReshuffle(s State) bool {
	return s.Shoe.Len() < e.rules.ReshuffleAt()
}

// Reshuffle replaces the shoe with a fresh one and resets the count. Only
// valid between rounds.
func (e *Engine) Reshuffle(s State, rng *rand.Rand) State {
	if s.Phase != Idle && s.Phase != Payout {
		return s
	}
	n := s.clone()
	n.Shoe = deck.NewShoe(rng, e.rules.Decks)
	n.ShoeSize = e.rules.ShoeSize()
	n.Discarded = 0
	n.RunningCount = 0
	n.Phase = Idle
	n.Hands = nil
	n.Dealer = Hand{}
	n.Active = -1
	n.HoleRevealed = false
	n.DealerDone = false
	n.Results = nil
	e.logger.Debug("Reshuffled shoe", "cards", n.Shoe.Len())
	return n
}

// Replenish continues a round whose shoe ran out. The shoe becomes a fresh
// shuffled one without the cards on the table, and the running count
// restarts from the face-up table cards; the hole card is counted on reveal
// as usual. Valid in any phase.
func (e *Engine) Replenish(s State, rng *rand.Rand) State {
	n := s.clone()
	table := append([]deck.Card(nil), n.Dealer.Cards...)
	for _, h := range n.Hands {
		table = append(table, h.Cards...)
	}

	cards := deck.NewShoe(rng, e.rules.Decks).Cards()
	for _, c := range table {
		for i, r := range cards {
			if r.Rank == c.Rank && r.Suit == c.Suit {
				cards = append(cards[:i], cards[i+1:]...)
				break
			}
		}
	}

	n.Shoe = deck.FromCards(cards)
	n.ShoeSize = e.rules.ShoeSize()
	n.Discarded = n.ShoeSize - n.Shoe.Len()
	n.RunningCount = count.Running(table)
	e.logger.Debug("Replenished shoe mid-round", "cards", n.Shoe.Len(), "table", len(table), "rc", n.RunningCount)
	return n
}

// Deal starts a round: every seat's bet is taken from the bankroll and cards
// are dealt one at a time, first to each seat, then the dealer's face-down
// hole card, then a second card to each seat and finally the dealer upcard.
func (e *Engine) Deal(s State) (State, error) {
	if s.Phase != Idle && s.Phase != Payout {
		return s, nil
	}
	seats := s.Seats()
	if seats == 0 || seats > MaxSeats {
		return s, nil
	}
	if s.Shoe.Len() < 2*seats+2 {
		return s, ErrShoeExhausted
	}

	n := s.clone()
	n.Phase = Dealing
	n.Results = nil
	n.HoleRevealed = false
	n.DealerDone = false
	n.Dealer = Hand{Seat: -1}
	n.Hands = make([]Hand, seats)
	for i := range n.Hands {
		n.Hands[i] = Hand{Seat: i, Bet: n.Bets[i]}
		n.Bankroll = n.Bankroll.Sub(n.Bets[i])
	}

	for i := range n.Hands {
		c, _ := n.draw(true)
		n.Hands[i].Cards = append(n.Hands[i].Cards, c)
	}
	hole, _ := n.draw(false)
	n.Dealer.Cards = append(n.Dealer.Cards, hole)
	for i := range n.Hands {
		c, _ := n.draw(true)
		n.Hands[i].Cards = append(n.Hands[i].Cards, c)
	}
	up, _ := n.draw(true)
	n.Dealer.Cards = append(n.Dealer.Cards, up)

	for i := range n.Hands {
		h := &n.Hands[i]
		if h.Total() == 21 {
			h.Complete = true
			h.Blackjack = true
		}
	}

	e.logger.Debug("Dealt round", "seats", seats, "up", up, "rc", n.RunningCount)

	if up.IsAce() && !n.anyBlackjack() {
		n.Phase = Insurance
		n.Active = -1
		return n, nil
	}
	return e.enterPlay(n), nil
}

// Insure settles the insurance offer. When take is true every hand without
// a natural is insured for half its bet.
func (e *Engine) Insure(s State, take bool) State {
	if s.Phase != Insurance {
		return s
	}
	n := s.clone()
	if take {
		for i := range n.Hands {
			h := &n.Hands[i]
			if h.Blackjack {
				continue
			}
			h.Insured = true
			n.Bankroll = n.Bankroll.Sub(h.InsuranceStake())
		}
	}
	e.logger.Debug("Insurance decided", "taken", take)
	return e.enterPlay(n)
}

// enterPlay moves a freshly dealt round into play. A dealer natural ends
// player action immediately.
func (e *Engine) enterPlay(n State) State {
	if n.Dealer.IsTwoCard21() || n.allComplete() {
		n.Phase = DealerTurn
		n.Active = -1
		return n
	}
	n.Phase = PlayerAction
	n.Active = n.rightmostIncomplete()
	return n
}

// Capabilities reports what the active hand may still do under the engine's
// rules. The same checks guard Double, Split and Surrender.
func (e *Engine) Capabilities(s State) strategy.Capabilities {
	if s.Phase != PlayerAction {
		return strategy.Capabilities{}
	}
	h, ok := s.ActiveHand()
	if !ok || h.Complete || h.AwaitingCard {
		return strategy.Capabilities{}
	}
	return strategy.Capabilities{
		CanDouble:    e.canDouble(h),
		CanSplit:     e.canSplit(s, h),
		CanSurrender: e.canSurrender(h),
	}
}

// Legal lists the actions the current phase accepts.
func (e *Engine) Legal(s State) []strategy.Action {
	switch s.Phase {
	case Insurance:
		return []strategy.Action{strategy.Insure, strategy.DeclineInsurance}
	case PlayerAction:
		h, ok := s.ActiveHand()
		if !ok || h.Complete || h.AwaitingCard {
			return nil
		}
		actions := []strategy.Action{strategy.Hit, strategy.Stand}
		caps := e.Capabilities(s)
		if caps.CanDouble {
			actions = append(actions, strategy.Double)
		}
		if caps.CanSplit {
			actions = append(actions, strategy.Split)
		}
		if caps.CanSurrender {
			actions = append(actions, strategy.Surrender)
		}
		return actions
	default:
		return nil
	}
}

func (e *Engine) canDouble(h Hand) bool {
	if len(h.Cards) != 2 || h.Doubled || h.Surrendered || h.AceSplit {
		return false
	}
	if h.FromSplit && !e.rules.DoubleAfterSplit {
		return false
	}
	return true
}

func (e *Engine) canSplit(s State, h Hand) bool {
	if !h.EligiblePair() || s.handsForSeat(h.Seat) >= e.rules.MaxHands {
		return false
	}
	if h.Cards[0].IsAce() && h.FromSplit && !e.rules.ResplitAces {
		return false
	}
	return true
}

func (e *Engine) canSurrender(h Hand) bool {
	return e.rules.Surrender && len(h.Cards) == 2 && !h.Doubled && !h.FromSplit && !h.Surrendered
}
