package round

import (
	"github.com/shopspring/decimal"
)

// dealerHits reports whether the dealer must draw on this hand.
func (e *Engine) dealerHits(h Hand) bool {
	t := h.Total()
	return t < 17 || (t == 17 && h.IsSoft() && e.rules.HitSoft17)
}

// DealerStep performs one unit of dealer play. The first step reveals the
// hole card and applies its count; each later step draws one card. Once the
// dealer is finished DealerDone is set and further steps are no-ops.
func (e *Engine) DealerStep(s State) (State, error) {
	if s.Phase != DealerTurn || s.DealerDone || len(s.Dealer.Cards) < 2 {
		return s, nil
	}
	n := s.clone()
	if !n.HoleRevealed {
		hole := n.Dealer.Cards[0].Up()
		n.Dealer.Cards[0] = hole
		n.RunningCount += hole.HiLo()
		n.HoleRevealed = true
		n.DealerDone = n.Dealer.IsTwoCard21() || !n.needsDealer() || !e.dealerHits(n.Dealer)
		e.logger.Debug("Revealed hole card", "card", hole, "total", n.Dealer.Total(), "rc", n.RunningCount)
		return n, nil
	}
	c, ok := n.draw(true)
	if !ok {
		return s, ErrShoeExhausted
	}
	n.Dealer.Cards = append(n.Dealer.Cards, c)
	n.Dealer.Busted = n.Dealer.Total() > 21
	n.DealerDone = !e.dealerHits(n.Dealer)
	e.logger.Debug("Dealer drew", "card", c, "total", n.Dealer.Total())
	return n, nil
}

// PlayDealer runs DealerStep until the dealer is finished.
func (e *Engine) PlayDealer(s State) (State, error) {
	n := s
	for n.Phase == DealerTurn && !n.DealerDone {
		next, err := e.DealerStep(n)
		if err != nil {
			return s, err
		}
		n = next
	}
	return n, nil
}

// Resolve finishes dealer play if needed and settles every hand. Payouts
// include the returned stake and are credited to the bankroll.
func (e *Engine) Resolve(s State) (State, error) {
	if s.Phase != DealerTurn {
		return s, nil
	}
	n, err := e.PlayDealer(s)
	if err != nil {
		return s, err
	}
	n = n.clone()

	dealerTotal := n.Dealer.Total()
	dealerBust := dealerTotal > 21
	dealerNatural := n.Dealer.IsTwoCard21()
	bonus := decimal.NewFromFloat(e.rules.BlackjackPayout)
	two := decimal.NewFromInt(2)

	total := decimal.Zero
	n.Results = make([]Result, 0, len(n.Hands))
	for i, h := range n.Hands {
		r := Result{Seat: h.Seat, Hand: i, Payout: decimal.Zero, Insurance: decimal.Zero}
		switch {
		case h.Surrendered:
			r.Outcome = Surrendered
		case h.Busted:
			r.Outcome = Bust
		case h.Blackjack && dealerTotal != 21:
			r.Outcome = Natural
			r.Payout = h.Bet.Add(h.Bet.Mul(bonus))
		case h.Blackjack:
			r.Outcome = Push
			r.Payout = h.Bet
		case dealerBust || h.Total() > dealerTotal:
			r.Outcome = Win
			r.Payout = h.Bet.Mul(two)
		case h.Total() == dealerTotal:
			r.Outcome = Push
			r.Payout = h.Bet
		default:
			r.Outcome = Lose
		}
		if h.Insured && dealerNatural {
			r.Insurance = h.InsuranceStake().Mul(decimal.NewFromInt(3))
		}
		total = total.Add(r.Payout).Add(r.Insurance)
		n.Results = append(n.Results, r)
	}

	n.Bankroll = n.Bankroll.Add(total)
	n.Phase = Payout
	n.Active = -1
	e.logger.Debug("Round resolved", "dealer", dealerTotal, "paid", total, "bankroll", n.Bankroll)
	return n, nil
}
