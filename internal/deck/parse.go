package deck

import (
	"fmt"
	"strings"
)

// ParseCards parses a compact card string such as "AsKh" or "Td 6c".
func ParseCards(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "") // Remove any spaces
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string length: %d (must be even)", len(s))
	}

	cards := []Card{}
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, fmt.Errorf("card at position %d: %w", i, err)
		}
		cards = append(cards, c)
	}

	return cards, nil
}

// MustParseCards is ParseCards for tests and static tables; it panics on error.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// ParseCard parses a two character card such as "As" or "Th".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	rank, err := ParseRank(s[:1])
	if err != nil {
		return Card{}, err
	}
	suit, err := parseSuit(s[1])
	if err != nil {
		return Card{}, err
	}
	return NewCard(suit, rank), nil
}

// ParseRank parses a rank symbol. "10" is accepted as an alias for "T".
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(s) {
	case "2":
		return Two, nil
	case "3":
		return Three, nil
	case "4":
		return Four, nil
	case "5":
		return Five, nil
	case "6":
		return Six, nil
	case "7":
		return Seven, nil
	case "8":
		return Eight, nil
	case "9":
		return Nine, nil
	case "T", "10":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "A":
		return Ace, nil
	default:
		return 0, fmt.Errorf("invalid rank %q", s)
	}
}

func parseSuit(c byte) (Suit, error) {
	switch c {
	case 's', 'S':
		return Spades, nil
	case 'h', 'H':
		return Hearts, nil
	case 'd', 'D':
		return Diamonds, nil
	case 'c', 'C':
		return Clubs, nil
	default:
		return 0, fmt.Errorf("invalid suit '%c'", c)
	}
}

// Code returns the two character form accepted by ParseCard, e.g. "Ts".
// The face-down flag is not part of the code.
func (c Card) Code() string {
	return c.Rank.String() + string(suitLetters[c.Suit])
}

var suitLetters = map[Suit]byte{
	Spades:   's',
	Hearts:   'h',
	Diamonds: 'd',
	Clubs:    'c',
}
