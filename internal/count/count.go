// Package count converts a Hi-Lo running count into a true count.
//
// True-count estimation is two quantization stages driven by one Method:
// the decks-remaining divisor is estimated first, then the quotient
// runningCount/divisor is rounded. Both stages always use the same method.
package count

import (
	"fmt"
	"math"
	"strings"

	"github.com/lox/bjtrainer/internal/deck"
)

// Method selects how decks remaining and the true count are rounded.
type Method int

const (
	// Perfect uses the exact decks remaining and an unrounded true count.
	Perfect Method = iota
	// HalfDeck rounds decks remaining and the true count to the nearest 0.5.
	HalfDeck
	// FullDeck rounds decks remaining up to a whole deck and floors the true count.
	FullDeck
)

// String returns the config name of the method
func (m Method) String() string {
	switch m {
	case Perfect:
		return "perfect"
	case HalfDeck:
		return "half-deck"
	case FullDeck:
		return "full-deck"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// Quantized reports whether the method produces discrete true counts.
func (m Method) Quantized() bool {
	return m != Perfect
}

// ParseMethod parses "perfect", "half-deck" or "full-deck".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "perfect", "exact":
		return Perfect, nil
	case "half-deck", "half", "halfdeck":
		return HalfDeck, nil
	case "full-deck", "full", "fulldeck":
		return FullDeck, nil
	default:
		return 0, fmt.Errorf("unknown count method %q", s)
	}
}

// DecksRemaining estimates the divisor used for the true count from the
// number of cards left in the shoe.
//
// Full-deck estimation rounds up, overstating decks remaining.
func DecksRemaining(cards int, m Method) float64 {
	exact := float64(cards) / deck.CardsPerDeck
	switch m {
	case HalfDeck:
		return math.Max(0.5, math.Round(exact*2)/2)
	case FullDeck:
		return math.Max(1, math.Ceil(exact))
	default:
		return exact
	}
}

// TrueCount returns the running count divided by the estimated decks
// remaining, quantized by the same method. An empty shoe under Perfect has
// no meaningful divisor and yields 0.
func TrueCount(runningCount, cards int, m Method) float64 {
	divisor := DecksRemaining(cards, m)
	if divisor <= 0 {
		return 0
	}
	tc := float64(runningCount) / divisor
	switch m {
	case HalfDeck:
		return math.Round(tc*2) / 2
	case FullDeck:
		return math.Floor(tc)
	default:
		return tc
	}
}

// Running returns the Hi-Lo running count of the face-up cards.
func Running(cards []deck.Card) int {
	rc := 0
	for _, c := range cards {
		if !c.FaceDown {
			rc += c.HiLo()
		}
	}
	return rc
}
