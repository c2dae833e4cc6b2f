package deck

import (
	"testing"

	"github.com/lox/bjtrainer/internal/randutil"
)

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "blackjack",
			input: "AsKh",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: King},
			},
		},
		{
			name:  "spaces and lower case",
			input: "td 6c",
			expected: []Card{
				{Suit: Diamonds, Rank: Ten},
				{Suit: Clubs, Rank: Six},
			},
		},
		{
			name:    "invalid rank",
			input:   "XsKs",
			wantErr: true,
		},
		{
			name:    "invalid suit",
			input:   "AsKx",
			wantErr: true,
		},
		{
			name:    "odd length",
			input:   "AsK",
			wantErr: true,
		},
		{
			name:     "empty string",
			input:    "",
			expected: []Card{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCards() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !cardsEqual(got, tt.expected) {
				t.Errorf("ParseCards() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustParseCardsPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustParseCards() should panic on invalid input")
		}
	}()
	MustParseCards("invalid")
}

func TestCardValues(t *testing.T) {
	tests := []struct {
		rank  Rank
		value int
		hilo  int
		ten   bool
	}{
		{Two, 2, 1, false},
		{Six, 6, 1, false},
		{Seven, 7, 0, false},
		{Nine, 9, 0, false},
		{Ten, 10, -1, true},
		{Jack, 10, -1, true},
		{King, 10, -1, true},
		{Ace, 11, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.rank.String(), func(t *testing.T) {
			c := NewCard(Hearts, tt.rank)
			if c.Value() != tt.value {
				t.Errorf("Value() = %d, want %d", c.Value(), tt.value)
			}
			if c.HiLo() != tt.hilo {
				t.Errorf("HiLo() = %d, want %d", c.HiLo(), tt.hilo)
			}
			if c.IsTen() != tt.ten {
				t.Errorf("IsTen() = %v, want %v", c.IsTen(), tt.ten)
			}
		})
	}
}

func TestSameValue(t *testing.T) {
	cards := MustParseCards("KsQhAs9d9c")
	if !cards[0].SameValue(cards[1]) {
		t.Error("K and Q should pair as ten-valued cards")
	}
	if !cards[3].SameValue(cards[4]) {
		t.Error("9 and 9 should pair")
	}
	if cards[0].SameValue(cards[2]) {
		t.Error("K and A should not pair")
	}
}

func TestFaceDownString(t *testing.T) {
	c := NewCard(Spades, Ace).Down()
	if c.String() != "??" {
		t.Errorf("face-down card rendered as %q", c.String())
	}
	if c.Up().String() != "A♠" {
		t.Errorf("face-up card rendered as %q", c.Up().String())
	}
}

func TestNewShoe(t *testing.T) {
	shoe := NewShoe(randutil.New(42), 6)

	if shoe.Len() != 6*CardsPerDeck {
		t.Fatalf("Expected %d cards, got %d", 6*CardsPerDeck, shoe.Len())
	}

	counts := map[Rank]int{}
	for _, c := range shoe.Cards() {
		if c.FaceDown {
			t.Fatal("new shoe cards must be face-up")
		}
		counts[c.Rank]++
	}
	for rank := Two; rank <= Ace; rank++ {
		if counts[rank] != 24 {
			t.Errorf("rank %s: got %d cards, want 24", rank, counts[rank])
		}
	}
}

func TestShoeHiLoBalanced(t *testing.T) {
	for decks := 1; decks <= 8; decks++ {
		shoe := NewShoe(randutil.New(int64(decks)), decks)
		if sum := shoe.HiLoSum(); sum != 0 {
			t.Errorf("%d decks: Hi-Lo sum = %d, want 0", decks, sum)
		}
	}
}

func TestShoeDraw(t *testing.T) {
	shoe := FromCards(MustParseCards("As2h"))

	card, rest, ok := shoe.Draw()
	if !ok {
		t.Fatal("Draw should succeed on a non-empty shoe")
	}
	if card.Rank != Ace {
		t.Errorf("drew %s, want the front card", card)
	}
	if rest.Len() != 1 || shoe.Len() != 2 {
		t.Errorf("Draw must not mutate the receiver: rest=%d original=%d", rest.Len(), shoe.Len())
	}

	_, rest, _ = rest.Draw()
	if !rest.IsEmpty() {
		t.Fatal("shoe should be empty")
	}
	if _, _, ok := rest.Draw(); ok {
		t.Error("Draw should fail on an empty shoe")
	}
}

func TestShuffleDeterministic(t *testing.T) {
	a := NewShoe(randutil.New(7), 2)
	b := NewShoe(randutil.New(7), 2)
	if !cardsEqual(a.Cards(), b.Cards()) {
		t.Error("same seed should produce the same shoe order")
	}
}

func cardsEqual(a, b []Card) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCardCodeParses(t *testing.T) {
	for _, c := range NewDeck() {
		got, err := ParseCard(c.Code())
		if err != nil {
			t.Fatalf("ParseCard(%q) error = %v", c.Code(), err)
		}
		if got != c {
			t.Errorf("ParseCard(%q) = %v, want %v", c.Code(), got, c)
		}
	}
	if code := NewCard(Hearts, Ten).Down().Code(); code != "Th" {
		t.Errorf("face-down Code() = %q, want Th", code)
	}
}
