package round

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lox/bjtrainer/internal/deck"
)

// Hand is one player hand (or the dealer's). Totals are always recomputed
// from the cards.
type Hand struct {
	Cards []deck.Card
	Seat  int
	Bet   decimal.Decimal

	Doubled      bool
	Surrendered  bool
	Busted       bool
	Blackjack    bool
	Complete     bool
	FromSplit    bool
	AwaitingCard bool // split hand still waiting for its second card
	AceSplit     bool
	Insured      bool
}

// totals returns the best total and whether an ace still counts as 11.
func totals(cards []deck.Card) (int, bool) {
	total := 0
	aces := 0
	for _, c := range cards {
		total += c.Value()
		if c.IsAce() {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0 && total <= 21
}

// Total returns the best blackjack total of the hand, including face-down
// cards.
func (h Hand) Total() int {
	t, _ := totals(h.Cards)
	return t
}

// IsSoft reports whether an ace in the hand is counted as 11.
func (h Hand) IsSoft() bool {
	_, soft := totals(h.Cards)
	return soft
}

// VisibleTotal returns the total of the face-up cards only.
func (h Hand) VisibleTotal() int {
	var up []deck.Card
	for _, c := range h.Cards {
		if !c.FaceDown {
			up = append(up, c)
		}
	}
	t, _ := totals(up)
	return t
}

// IsTwoCard21 reports a two-card 21. For player hands this is a natural only
// when the hand did not come from a split; see Blackjack.
func (h Hand) IsTwoCard21() bool {
	return len(h.Cards) == 2 && h.Total() == 21
}

// IsPair reports two cards of equal value (same rank or both ten-valued).
func (h Hand) IsPair() bool {
	return len(h.Cards) == 2 && h.Cards[0].SameValue(h.Cards[1])
}

// EligiblePair reports a pair that is still unmodified by doubling or
// surrender.
func (h Hand) EligiblePair() bool {
	return h.IsPair() && !h.Doubled && !h.Surrendered
}

// PairValue returns the blackjack value of a pair's card, or 0.
func (h Hand) PairValue() int {
	if !h.IsPair() {
		return 0
	}
	return h.Cards[0].Value()
}

// InsuranceStake returns the insurance bet for this hand (half its bet).
func (h Hand) InsuranceStake() decimal.Decimal {
	return h.Bet.Div(decimal.NewFromInt(2))
}

// needsDealer reports whether the hand's result depends on the dealer total.
func (h Hand) needsDealer() bool {
	return !h.Busted && !h.Surrendered && !h.Blackjack
}

func (h Hand) clone() Hand {
	h.Cards = append([]deck.Card(nil), h.Cards...)
	return h
}

// String renders the cards, e.g. "A♠ 7♦".
func (h Hand) String() string {
	parts := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
