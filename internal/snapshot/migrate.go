package snapshot

import (
	"fmt"
	"strings"
)

// Version 1 wrote tens as "10" and phases without separators.
var v1Phases = map[string]string{
	"idle":         "idle",
	"dealing":      "dealing",
	"insurance":    "insurance",
	"playeraction": "player-action",
	"dealerturn":   "dealer-turn",
	"payout":       "payout",
}

func migrateV1(doc *stateDoc) error {
	phase, ok := v1Phases[strings.ToLower(doc.Phase)]
	if !ok {
		return fmt.Errorf("%w: unknown v1 phase %q", ErrInvalidSnapshot, doc.Phase)
	}
	doc.Phase = phase

	migrateCards(doc.Shoe)
	migrateCards(doc.Dealer.Cards)
	for i := range doc.Hands {
		migrateCards(doc.Hands[i].Cards)
	}
	return nil
}

func migrateCards(cards []string) {
	for i, c := range cards {
		if strings.HasPrefix(c, "10") {
			cards[i] = "T" + c[2:]
		}
	}
}
