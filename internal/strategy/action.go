package strategy

import (
	"fmt"
	"strings"
)

// Action is a player decision.
type Action int

const (
	Hit Action = iota
	Stand
	Double
	Split
	Surrender
	Insure
	DeclineInsurance
)

// String returns the string representation of an action
func (a Action) String() string {
	switch a {
	case Hit:
		return "hit"
	case Stand:
		return "stand"
	case Double:
		return "double"
	case Split:
		return "split"
	case Surrender:
		return "surrender"
	case Insure:
		return "insurance"
	case DeclineInsurance:
		return "no-insurance"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction parses an action name or its single-letter shortcut.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hit", "h":
		return Hit, nil
	case "stand", "s":
		return Stand, nil
	case "double", "d":
		return Double, nil
	case "split", "p":
		return Split, nil
	case "surrender", "r":
		return Surrender, nil
	case "insurance", "insure", "i":
		return Insure, nil
	case "no-insurance", "decline", "n":
		return DeclineInsurance, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// HandType classifies a hand for table lookup.
type HandType int

const (
	Hard HandType = iota
	Soft
	Pair
)

// String returns the string representation of a hand type
func (t HandType) String() string {
	switch t {
	case Hard:
		return "hard"
	case Soft:
		return "soft"
	case Pair:
		return "pair"
	default:
		return "unknown"
	}
}
