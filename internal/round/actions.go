package round

import (
	"github.com/shopspring/decimal"

	"github.com/lox/bjtrainer/internal/deck"
)

// playable returns a copy of the state and the index of the active hand when
// a player action is valid.
func (s State) playable() (State, int, bool) {
	if s.Phase != PlayerAction {
		return s, -1, false
	}
	h, ok := s.ActiveHand()
	if !ok || h.Complete || h.AwaitingCard {
		return s, -1, false
	}
	return s.clone(), s.Active, true
}

// Hit draws one card to the active hand. The hand completes when it busts or
// reaches 21.
func (e *Engine) Hit(s State) (State, error) {
	n, i, ok := s.playable()
	if !ok {
		return s, nil
	}
	c, ok := n.draw(true)
	if !ok {
		return s, ErrShoeExhausted
	}
	h := &n.Hands[i]
	h.Cards = append(h.Cards, c)
	switch t := h.Total(); {
	case t > 21:
		h.Busted = true
		h.Complete = true
	case t == 21:
		h.Complete = true
	}
	e.logger.Debug("Hit", "hand", i, "card", c, "total", h.Total())
	return n, nil
}

// Stand completes the active hand.
func (e *Engine) Stand(s State) State {
	n, i, ok := s.playable()
	if !ok {
		return s
	}
	n.Hands[i].Complete = true
	e.logger.Debug("Stand", "hand", i, "total", n.Hands[i].Total())
	return n
}

// Double doubles the active hand's bet, draws exactly one card and completes
// the hand whatever its total.
func (e *Engine) Double(s State) (State, error) {
	n, i, ok := s.playable()
	if !ok || !e.canDouble(n.Hands[i]) {
		return s, nil
	}
	c, ok := n.draw(true)
	if !ok {
		return s, ErrShoeExhausted
	}
	h := &n.Hands[i]
	n.Bankroll = n.Bankroll.Sub(h.Bet)
	h.Bet = h.Bet.Add(h.Bet)
	h.Doubled = true
	h.Cards = append(h.Cards, c)
	h.Busted = h.Total() > 21
	h.Complete = true
	e.logger.Debug("Double", "hand", i, "card", c, "total", h.Total())
	return n, nil
}

// Split divides a pair into two one-card hands, each carrying the original
// bet. The bankroll pays the second bet immediately. Both hands wait for a
// second card from DealToHand, and the right-hand one becomes active.
func (e *Engine) Split(s State) State {
	n, i, ok := s.playable()
	if !ok || !e.canSplit(n, n.Hands[i]) {
		return s
	}
	orig := n.Hands[i]
	aces := orig.Cards[0].IsAce()
	left := Hand{
		Cards:        []deck.Card{orig.Cards[0]},
		Seat:         orig.Seat,
		Bet:          orig.Bet,
		FromSplit:    true,
		AwaitingCard: true,
		AceSplit:     aces,
		Insured:      orig.Insured,
	}
	right := left
	right.Cards = []deck.Card{orig.Cards[1]}
	right.Insured = false

	hands := make([]Hand, 0, len(n.Hands)+1)
	hands = append(hands, n.Hands[:i]...)
	hands = append(hands, left, right)
	hands = append(hands, n.Hands[i+1:]...)
	n.Hands = hands
	n.Bankroll = n.Bankroll.Sub(orig.Bet)
	n.Active = i + 1
	e.logger.Debug("Split", "hand", i, "rank", orig.Cards[0].Rank, "hands", len(n.Hands))
	return n
}

// DealToHand supplies the second card to a split hand waiting for one. Split
// aces complete on that card.
func (e *Engine) DealToHand(s State, idx int) (State, error) {
	if s.Phase != PlayerAction || idx < 0 || idx >= len(s.Hands) || !s.Hands[idx].AwaitingCard {
		return s, nil
	}
	n := s.clone()
	c, ok := n.draw(true)
	if !ok {
		return s, ErrShoeExhausted
	}
	h := &n.Hands[idx]
	h.Cards = append(h.Cards, c)
	h.AwaitingCard = false
	if h.AceSplit || h.Total() == 21 {
		h.Complete = true
	}
	e.logger.Debug("Dealt to split hand", "hand", idx, "card", c, "total", h.Total())
	return n, nil
}

// Surrender gives up the active hand and refunds half its bet at once.
func (e *Engine) Surrender(s State) State {
	n, i, ok := s.playable()
	if !ok || !e.canSurrender(n.Hands[i]) {
		return s
	}
	h := &n.Hands[i]
	refund := h.Bet.Div(decimal.NewFromInt(2))
	h.Surrendered = true
	h.Complete = true
	n.Bankroll = n.Bankroll.Add(refund)
	e.logger.Debug("Surrender", "hand", i, "refund", refund)
	return n
}

// Advance moves play to the rightmost incomplete hand once the active hand
// is complete, or to the dealer when every hand is done.
func (e *Engine) Advance(s State) State {
	if s.Phase != PlayerAction {
		return s
	}
	if h, ok := s.ActiveHand(); ok && !h.Complete {
		return s
	}
	n := s.clone()
	next := n.rightmostIncomplete()
	if next < 0 {
		n.Phase = DealerTurn
		n.Active = -1
		e.logger.Debug("Player action complete")
		return n
	}
	n.Active = next
	return n
}
