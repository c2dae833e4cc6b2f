package snapshot

import (
	"fmt"

	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/round"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidSnapshot}, args...)...)
}

func parseCards(field string, in []string) ([]deck.Card, error) {
	out := make([]deck.Card, len(in))
	for i, s := range in {
		c, err := deck.ParseCard(s)
		if err != nil {
			return nil, invalid("%s[%d]: %v", field, i, err)
		}
		out[i] = c
	}
	return out, nil
}

func (h handDoc) hand(field string) (round.Hand, error) {
	cards, err := parseCards(field, h.Cards)
	if err != nil {
		return round.Hand{}, err
	}
	return round.Hand{
		Cards:        cards,
		Seat:         h.Seat,
		Bet:          h.Bet,
		Doubled:      h.Doubled,
		Surrendered:  h.Surrendered,
		Busted:       h.Busted,
		Blackjack:    h.Blackjack,
		Complete:     h.Complete,
		FromSplit:    h.FromSplit,
		AwaitingCard: h.AwaitingCard,
		AceSplit:     h.AceSplit,
		Insured:      h.Insured,
	}, nil
}

// state converts and validates the document.
func (d stateDoc) state() (round.State, error) {
	phase, err := round.ParsePhase(d.Phase)
	if err != nil {
		return round.State{}, invalid("%v", err)
	}
	if phase == round.Dealing || phase == round.DealerTurn {
		return round.State{}, fmt.Errorf("%w: %s", ErrUnsafePhase, phase)
	}

	if d.ShoeSize <= 0 || d.ShoeSize%deck.CardsPerDeck != 0 {
		return round.State{}, invalid("shoe size %d is not a whole number of decks", d.ShoeSize)
	}
	if d.Discarded < 0 || len(d.Shoe)+d.Discarded != d.ShoeSize {
		return round.State{}, invalid("%d cards in shoe and %d discarded do not make %d", len(d.Shoe), d.Discarded, d.ShoeSize)
	}
	if len(d.Bets) == 0 || len(d.Bets) > round.MaxSeats {
		return round.State{}, invalid("%d seats", len(d.Bets))
	}
	for i, b := range d.Bets {
		if !b.IsPositive() {
			return round.State{}, invalid("seat %d bet %s", i, b)
		}
	}

	shoe, err := parseCards("shoe", d.Shoe)
	if err != nil {
		return round.State{}, err
	}
	dealer, err := d.Dealer.hand("dealer")
	if err != nil {
		return round.State{}, err
	}
	hands := make([]round.Hand, len(d.Hands))
	for i, hd := range d.Hands {
		if hands[i], err = hd.hand(fmt.Sprintf("hands[%d]", i)); err != nil {
			return round.State{}, err
		}
	}

	s := round.State{
		Phase:        phase,
		Shoe:         deck.FromCards(shoe),
		Dealer:       dealer,
		Hands:        hands,
		Active:       d.Active,
		RunningCount: d.RunningCount,
		Bets:         d.Bets,
		Bankroll:     d.Bankroll,
		Discarded:    d.Discarded,
		ShoeSize:     d.ShoeSize,
		HoleRevealed: d.HoleRevealed,
	}
	if err := checkInventory(s); err != nil {
		return round.State{}, err
	}

	switch phase {
	case round.Idle:
		if len(hands) > 0 || len(dealer.Cards) > 0 || d.Active != -1 {
			return round.State{}, invalid("idle table has cards in play")
		}
	case round.Payout:
		if d.Active != -1 {
			return round.State{}, invalid("settled table has active hand %d", d.Active)
		}
	case round.Insurance, round.PlayerAction:
		if err := checkRound(s); err != nil {
			return round.State{}, err
		}
		s.Dealer.Cards[0] = s.Dealer.Cards[0].Down()
	}
	return s, nil
}

// checkInventory rejects more copies of a card than the shoe was built with.
func checkInventory(s round.State) error {
	decks := s.ShoeSize / deck.CardsPerDeck
	seen := make(map[deck.Card]int)
	onTable := len(s.Dealer.Cards)
	add := func(cards []deck.Card) {
		for _, c := range cards {
			seen[c.Up()]++
		}
	}
	add(s.Shoe.Cards())
	add(s.Dealer.Cards)
	for _, h := range s.Hands {
		add(h.Cards)
		onTable += len(h.Cards)
	}
	for c, n := range seen {
		if n > decks {
			return invalid("%d copies of %s in a %d deck shoe", n, c, decks)
		}
	}
	if onTable > s.Discarded {
		return invalid("%d cards on the table but only %d drawn", onTable, s.Discarded)
	}
	return nil
}

// checkRound validates a table waiting on a player decision.
func checkRound(s round.State) error {
	if len(s.Dealer.Cards) != 2 || s.HoleRevealed {
		return invalid("dealer must hold two cards with the hole card down")
	}
	if len(s.Hands) < s.Seats() {
		return invalid("%d hands for %d seats", len(s.Hands), s.Seats())
	}

	prevSeat := 0
	for i, h := range s.Hands {
		if h.Seat < prevSeat || h.Seat >= s.Seats() {
			return invalid("hand %d has seat %d out of order", i, h.Seat)
		}
		prevSeat = h.Seat
		if len(h.Cards) == 0 || !h.Bet.IsPositive() {
			return invalid("hand %d is empty or unbet", i)
		}
		if h.Busted != (h.Total() > 21) {
			return invalid("hand %d bust flag disagrees with total %d", i, h.Total())
		}
		if h.Busted && !h.Complete {
			return invalid("hand %d is bust but not complete", i)
		}
	}

	if s.Phase == round.Insurance {
		if s.Active != -1 {
			return invalid("active hand %d during insurance", s.Active)
		}
		if up, _ := s.DealerUp(); !up.IsAce() {
			return invalid("insurance offered against %s", up)
		}
		return nil
	}

	h, ok := s.ActiveHand()
	if !ok {
		return invalid("active hand %d out of range", s.Active)
	}
	if h.Complete {
		return invalid("active hand %d is already complete", s.Active)
	}
	return nil
}
