package round

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lox/bjtrainer/internal/deck"
)

// MaxSeats is the number of player seats the table supports.
const MaxSeats = 3

// Phase is the round state machine phase.
type Phase int

const (
	Idle Phase = iota
	Dealing
	Insurance
	PlayerAction
	DealerTurn
	Payout
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dealing:
		return "dealing"
	case Insurance:
		return "insurance"
	case PlayerAction:
		return "player-action"
	case DealerTurn:
		return "dealer-turn"
	case Payout:
		return "payout"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ParsePhase parses the String form of a phase.
func ParsePhase(s string) (Phase, error) {
	for p := Idle; p <= Payout; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// Outcome is how a player hand finished.
type Outcome int

const (
	Lose Outcome = iota
	Win
	Push
	Natural
	Bust
	Surrendered
)

// String returns the string representation of an outcome
func (o Outcome) String() string {
	switch o {
	case Lose:
		return "lose"
	case Win:
		return "win"
	case Push:
		return "push"
	case Natural:
		return "blackjack"
	case Bust:
		return "bust"
	case Surrendered:
		return "surrender"
	default:
		return "unknown"
	}
}

// Result is the settlement of one player hand. Payout is the amount returned
// to the bankroll at resolution, stake included.
type Result struct {
	Seat      int
	Hand      int
	Outcome   Outcome
	Payout    decimal.Decimal
	Insurance decimal.Decimal
}

// State is the complete state of the table. Engine methods never modify a
// State in place; they return a new value, so keeping the previous value is a
// snapshot.
type State struct {
	Phase  Phase
	Shoe   deck.Shoe
	Dealer Hand
	Hands  []Hand
	Active int

	RunningCount int
	Bets         []decimal.Decimal // one per seat
	Bankroll     decimal.Decimal

	// Discarded counts cards drawn since the last shuffle; with the shoe
	// length it always adds up to ShoeSize.
	Discarded int
	ShoeSize  int

	HoleRevealed bool
	DealerDone   bool
	Results      []Result
}

// NewState creates an idle table with the given shoe. shoeSize is the number
// of cards in the full shoe; cards already missing from shoe count as
// discarded.
func NewState(shoe deck.Shoe, shoeSize int, bets []decimal.Decimal, bankroll decimal.Decimal) State {
	return State{
		Phase:     Idle,
		Shoe:      shoe,
		Bets:      append([]decimal.Decimal(nil), bets...),
		Bankroll:  bankroll,
		ShoeSize:  shoeSize,
		Discarded: shoeSize - shoe.Len(),
		Active:    -1,
	}
}

// UniformBets returns n identical seat bets.
func UniformBets(n int, bet decimal.Decimal) []decimal.Decimal {
	bets := make([]decimal.Decimal, n)
	for i := range bets {
		bets[i] = bet
	}
	return bets
}

// Seats returns the number of player seats.
func (s State) Seats() int {
	return len(s.Bets)
}

// ActiveHand returns the hand awaiting a decision.
func (s State) ActiveHand() (Hand, bool) {
	if s.Active < 0 || s.Active >= len(s.Hands) {
		return Hand{}, false
	}
	return s.Hands[s.Active], true
}

// DealerUp returns the dealer's upcard.
func (s State) DealerUp() (deck.Card, bool) {
	if len(s.Dealer.Cards) < 2 {
		return deck.Card{}, false
	}
	return s.Dealer.Cards[1], true
}

// ShoeConsistent reports whether cards in the shoe plus cards drawn equal the
// full shoe size.
func (s State) ShoeConsistent() bool {
	return s.Shoe.Len()+s.Discarded == s.ShoeSize
}

func (s State) clone() State {
	n := s
	n.Dealer = s.Dealer.clone()
	n.Hands = make([]Hand, len(s.Hands))
	for i, h := range s.Hands {
		n.Hands[i] = h.clone()
	}
	n.Bets = append([]decimal.Decimal(nil), s.Bets...)
	n.Results = append([]Result(nil), s.Results...)
	return n
}

// draw takes the front card of the shoe. Face-up cards are counted here and
// nowhere else; a face-down card is counted when revealed.
func (s *State) draw(faceUp bool) (deck.Card, bool) {
	c, rest, ok := s.Shoe.Draw()
	if !ok {
		return deck.Card{}, false
	}
	s.Shoe = rest
	s.Discarded++
	if faceUp {
		s.RunningCount += c.HiLo()
		return c.Up(), true
	}
	return c.Down(), true
}

func (s State) anyBlackjack() bool {
	for _, h := range s.Hands {
		if h.Blackjack {
			return true
		}
	}
	return false
}

func (s State) allComplete() bool {
	for _, h := range s.Hands {
		if !h.Complete {
			return false
		}
	}
	return true
}

// rightmostIncomplete returns the highest-index incomplete hand, or -1.
func (s State) rightmostIncomplete() int {
	for i := len(s.Hands) - 1; i >= 0; i-- {
		if !s.Hands[i].Complete {
			return i
		}
	}
	return -1
}

func (s State) needsDealer() bool {
	for _, h := range s.Hands {
		if h.needsDealer() {
			return true
		}
	}
	return false
}

func (s State) handsForSeat(seat int) int {
	n := 0
	for _, h := range s.Hands {
		if h.Seat == seat {
			n++
		}
	}
	return n
}
