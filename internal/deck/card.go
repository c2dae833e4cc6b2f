package deck

import "fmt"

// Suit represents a card suit. Suits never affect blackjack rules.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	return s >= Spades && s <= Clubs
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Two:
		return "2"
	case Three:
		return "3"
	case Four:
		return "4"
	case Five:
		return "5"
	case Six:
		return "6"
	case Seven:
		return "7"
	case Eight:
		return "8"
	case Nine:
		return "9"
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

// Valid reports whether r is one of the thirteen ranks.
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// Value returns the blackjack value of the rank. Ten-valued ranks are 10 and
// an Ace is 11; hand totals reduce aces as needed.
func (r Rank) Value() int {
	switch {
	case r == Ace:
		return 11
	case r >= Ten:
		return 10
	default:
		return int(r)
	}
}

// HiLo returns the Hi-Lo count value of the rank.
func (r Rank) HiLo() int {
	switch {
	case r >= Two && r <= Six:
		return 1
	case r >= Seven && r <= Nine:
		return 0
	default:
		return -1
	}
}

// RankForValue returns a representative rank for a blackjack value (2-11).
// Ten-valued cards map to Ten and 11 maps to Ace.
func RankForValue(v int) (Rank, bool) {
	switch {
	case v >= 2 && v <= 9:
		return Rank(v), true
	case v == 10:
		return Ten, true
	case v == 11:
		return Ace, true
	default:
		return 0, false
	}
}

// Card represents a playing card. The zero FaceDown value means the card is
// face-up; only the dealer hole card is ever dealt face-down.
type Card struct {
	Suit     Suit
	Rank     Rank
	FaceDown bool
}

// NewCard creates a new face-up card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the string representation of a card (e.g., "A♠").
// Face-down cards render as "??".
func (c Card) String() string {
	if c.FaceDown {
		return "??"
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Value returns the blackjack value of the card.
func (c Card) Value() int {
	return c.Rank.Value()
}

// HiLo returns the Hi-Lo count value of the card.
func (c Card) HiLo() int {
	return c.Rank.HiLo()
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// IsTen returns true for ten-valued cards (T, J, Q, K).
func (c Card) IsTen() bool {
	return c.Rank >= Ten && c.Rank <= King
}

// SameValue reports whether two cards pair for splitting purposes: the same
// rank, or both ten-valued.
func (c Card) SameValue(other Card) bool {
	return c.Rank == other.Rank || (c.IsTen() && other.IsTen())
}

// Up returns a face-up copy of the card.
func (c Card) Up() Card {
	c.FaceDown = false
	return c
}

// Down returns a face-down copy of the card.
func (c Card) Down() Card {
	c.FaceDown = true
	return c
}
