package deck

import (
	"math/rand/v2"
)

// CardsPerDeck is the number of cards in one standard deck.
const CardsPerDeck = 52

// Shoe is an ordered sequence of cards dealt from the front. A Shoe is a
// value: Draw returns a new Shoe and never writes to the backing array, so
// copies taken for snapshots stay valid.
type Shoe struct {
	cards []Card
}

// NewShoe creates a shoe of numDecks standard decks, shuffled with rng.
func NewShoe(rng *rand.Rand, numDecks int) Shoe {
	if rng == nil {
		panic("rng is required for shoe creation")
	}
	cards := make([]Card, 0, numDecks*CardsPerDeck)
	for range numDecks {
		cards = append(cards, NewDeck()...)
	}
	Shuffle(rng, cards)
	return Shoe{cards: cards}
}

// NewDeck returns the 52 cards of one deck in suit/rank order.
func NewDeck() []Card {
	cards := make([]Card, 0, CardsPerDeck)
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}

// FromCards builds a shoe that deals the given cards in order. The slice is
// copied.
func FromCards(cards []Card) Shoe {
	return Shoe{cards: append([]Card(nil), cards...)}
}

// Shuffle randomizes the order of cards in place using Fisher-Yates
func Shuffle(rng *rand.Rand, cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Draw removes and returns the front card. ok is false when the shoe is
// empty; callers check penetration before dealing.
func (s Shoe) Draw() (card Card, rest Shoe, ok bool) {
	if len(s.cards) == 0 {
		return Card{}, s, false
	}
	return s.cards[0], Shoe{cards: s.cards[1:]}, true
}

// Peek returns the front card without removing it from the shoe
func (s Shoe) Peek() (Card, bool) {
	if len(s.cards) == 0 {
		return Card{}, false
	}
	return s.cards[0], true
}

// Len returns the number of cards left in the shoe
func (s Shoe) Len() int {
	return len(s.cards)
}

// IsEmpty returns true if the shoe has no cards left
func (s Shoe) IsEmpty() bool {
	return len(s.cards) == 0
}

// Cards returns a copy of the remaining cards in dealing order.
func (s Shoe) Cards() []Card {
	return append([]Card(nil), s.cards...)
}

// HiLoSum returns the sum of Hi-Lo values of the remaining cards. For a
// freshly built shoe it is zero, so the running count of everything dealt is
// the negation of this value.
func (s Shoe) HiLoSum() int {
	sum := 0
	for _, c := range s.cards {
		sum += c.HiLo()
	}
	return sum
}
