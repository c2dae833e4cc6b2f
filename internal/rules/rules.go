// Package rules defines the table rules threaded through the engine, the
// strategy oracle and the trainer. There is no package-level rule set in use
// at runtime; callers pass a Rules value explicitly.
package rules

import (
	"fmt"

	"github.com/lox/bjtrainer/internal/count"
	"github.com/lox/bjtrainer/internal/deck"
)

// Rules is the configured blackjack rule set.
type Rules struct {
	Decks            int
	HitSoft17        bool
	DoubleAfterSplit bool
	Surrender        bool
	// BlackjackPayout is the bonus paid on a natural (1.5 for 3:2).
	BlackjackPayout float64
	// Penetration is the fraction of the shoe dealt before a reshuffle.
	Penetration float64
	MaxHands    int
	ResplitAces bool
	// HitSplitAces is carried for the rule table but split aces always
	// complete after one card.
	HitSplitAces bool
	CountMethod  count.Method
	// Tolerance is the accepted |TC - target| when constructing shoes in
	// perfect mode.
	Tolerance float64
}

// Default returns the standard six-deck game.
func Default() Rules {
	return Rules{
		Decks:            6,
		HitSoft17:        false,
		DoubleAfterSplit: true,
		Surrender:        true,
		BlackjackPayout:  1.5,
		Penetration:      0.75,
		MaxHands:         4,
		ResplitAces:      false,
		HitSplitAces:     false,
		CountMethod:      count.HalfDeck,
		Tolerance:        0.25,
	}
}

// ShoeSize returns the number of cards in a full shoe.
func (r Rules) ShoeSize() int {
	return r.Decks * deck.CardsPerDeck
}

// ReshuffleAt returns the remaining-card threshold below which the shoe must
// be reshuffled before the next deal.
func (r Rules) ReshuffleAt() int {
	return int(float64(r.ShoeSize()) * (1 - r.Penetration))
}

// MinReserve is the fewest cards the reshuffle point may leave in the shoe,
// enough for a single-seat round. Single deck at 75% leaves 13.
const MinReserve = 10

// Validate checks the rule set for impossible values.
func (r Rules) Validate() error {
	if r.Decks < 1 || r.Decks > 8 {
		return fmt.Errorf("decks must be between 1 and 8, got %d", r.Decks)
	}
	if r.BlackjackPayout <= 0 {
		return fmt.Errorf("blackjack payout must be positive, got %v", r.BlackjackPayout)
	}
	if r.Penetration <= 0 || r.Penetration >= 1 {
		return fmt.Errorf("penetration must be in (0, 1), got %v", r.Penetration)
	}
	if r.ReshuffleAt() < MinReserve {
		return fmt.Errorf("penetration %v leaves %d cards, need at least %d", r.Penetration, r.ReshuffleAt(), MinReserve)
	}
	if r.MaxHands < 1 {
		return fmt.Errorf("max hands must be at least 1, got %d", r.MaxHands)
	}
	if r.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %v", r.Tolerance)
	}
	switch r.CountMethod {
	case count.Perfect, count.HalfDeck, count.FullDeck:
	default:
		return fmt.Errorf("invalid count method %v", r.CountMethod)
	}
	return nil
}

// String summarises the rules in the usual shorthand, e.g. "6D S17 DAS LS 3:2".
func (r Rules) String() string {
	s := fmt.Sprintf("%dD", r.Decks)
	if r.HitSoft17 {
		s += " H17"
	} else {
		s += " S17"
	}
	if r.DoubleAfterSplit {
		s += " DAS"
	}
	if r.Surrender {
		s += " LS"
	}
	switch r.BlackjackPayout {
	case 1.5:
		s += " 3:2"
	case 1.2:
		s += " 6:5"
	default:
		s += fmt.Sprintf(" BJ %.2f", r.BlackjackPayout)
	}
	return s
}
