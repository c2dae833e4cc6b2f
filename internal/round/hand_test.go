package round

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/bjtrainer/internal/deck"
)

// orderings returns every arrangement of cards.
func orderings(cards []deck.Card) [][]deck.Card {
	if len(cards) <= 1 {
		return [][]deck.Card{append([]deck.Card(nil), cards...)}
	}
	var out [][]deck.Card
	for i := range cards {
		rest := append(append([]deck.Card(nil), cards[:i]...), cards[i+1:]...)
		for _, tail := range orderings(rest) {
			out = append(out, append([]deck.Card{cards[i]}, tail...))
		}
	}
	return out
}

func TestHandTotal(t *testing.T) {
	tests := []struct {
		name  string
		cards string
		total int
		soft  bool
	}{
		{name: "soft 17", cards: "As 6d", total: 17, soft: true},
		{name: "two aces", cards: "As Ad", total: 12, soft: true},
		{name: "soft 21 with two aces", cards: "As Ad 9c", total: 21, soft: true},
		{name: "ace forced hard", cards: "As 6d Tc", total: 17, soft: false},
		{name: "hard 21", cards: "As 5d 5c Th", total: 21, soft: false},
		{name: "blackjack", cards: "As Kd", total: 21, soft: true},
		{name: "four aces", cards: "As Ad Ac Ah", total: 14, soft: true},
		{name: "two aces bust", cards: "As Ad Kc Kh", total: 22, soft: false},
		{name: "three aces bust", cards: "As Ad Ac Kc Kh", total: 23, soft: false},
		{name: "no aces bust", cards: "Ts 6d 8c", total: 24, soft: false},
		{name: "hard 12", cards: "Ts 2d", total: 12, soft: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, cards := range orderings(deck.MustParseCards(tt.cards)) {
				h := Hand{Cards: cards}
				assert.Equal(t, tt.total, h.Total(), "%v", cards)
				assert.Equal(t, tt.soft, h.IsSoft(), "%v", cards)
			}
		})
	}
}

func TestVisibleTotalSkipsHoleCard(t *testing.T) {
	cards := deck.MustParseCards("As 9c")
	cards[0] = cards[0].Down()
	h := Hand{Cards: cards}
	assert.Equal(t, 9, h.VisibleTotal())
	assert.Equal(t, 20, h.Total())
}
