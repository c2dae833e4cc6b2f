package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/lox/bjtrainer/internal/count"
	"github.com/lox/bjtrainer/internal/deck"
	"github.com/lox/bjtrainer/internal/deviation"
	"github.com/lox/bjtrainer/internal/drill"
	"github.com/lox/bjtrainer/internal/round"
	"github.com/lox/bjtrainer/internal/rules"
	"github.com/lox/bjtrainer/internal/scenario"
	"github.com/lox/bjtrainer/internal/strategy"
)

// FormatCard renders a card in suit colour, or hidden when face down.
func FormatCard(c deck.Card) string {
	switch {
	case c.FaceDown:
		return HiddenCardStyle.Render(c.String())
	case c.Suit.IsRed():
		return RedCardStyle.Render(c.String())
	default:
		return BlackCardStyle.Render(c.String())
	}
}

// FormatCards formats cards with colors
func FormatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return ""
	}
	formatted := make([]string, len(cards))
	for i, c := range cards {
		formatted[i] = FormatCard(c)
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func describeTotal(h round.Hand) string {
	switch {
	case h.Blackjack:
		return "blackjack"
	case h.Busted:
		return fmt.Sprintf("%d bust", h.Total())
	case h.IsSoft():
		return fmt.Sprintf("soft %d", h.Total())
	default:
		return fmt.Sprintf("%d", h.Total())
	}
}

// RenderTable draws the dealer, every hand and the count line.
func RenderTable(s round.State, tc float64, showCount bool) string {
	var b strings.Builder

	dealer := "Dealer: " + FormatCards(s.Dealer.Cards)
	if len(s.Dealer.Cards) > 0 {
		if s.HoleRevealed {
			dealer += " " + InfoStyle.Render("("+describeTotal(s.Dealer)+")")
		} else {
			dealer += " " + InfoStyle.Render(fmt.Sprintf("(showing %d)", s.Dealer.VisibleTotal()))
		}
	}
	b.WriteString(dealer)
	b.WriteString("\n")

	for i, h := range s.Hands {
		line := fmt.Sprintf("Seat %d: %s %s %s", h.Seat+1, FormatCards(h.Cards),
			InfoStyle.Render("("+describeTotal(h)+")"), money(h.Bet))
		var flags []string
		if h.Doubled {
			flags = append(flags, "doubled")
		}
		if h.Surrendered {
			flags = append(flags, "surrendered")
		}
		if h.Insured {
			flags = append(flags, "insured")
		}
		if len(flags) > 0 {
			line += " " + WarningStyle.Render(strings.Join(flags, ", "))
		}
		if i == s.Active {
			line = HandInfoStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	status := fmt.Sprintf("Bankroll %s  Shoe %d cards", money(s.Bankroll), s.Shoe.Len())
	if showCount {
		status = fmt.Sprintf("RC %+d  TC %+.1f  ", s.RunningCount, tc) + status
	}
	b.WriteString(InfoStyle.Render(status))
	return b.String()
}

// RenderResults summarises a settled round.
func RenderResults(s round.State) string {
	var lines []string
	for _, r := range s.Results {
		style := InfoStyle
		switch r.Outcome {
		case round.Win, round.Natural:
			style = SuccessStyle
		case round.Lose, round.Bust:
			style = ErrorStyle
		}
		line := fmt.Sprintf("Seat %d hand %d: %s, paid %s", r.Seat+1, r.Hand+1, r.Outcome, money(r.Payout))
		if r.Insurance.IsPositive() {
			line += fmt.Sprintf(" + insurance %s", money(r.Insurance))
		}
		lines = append(lines, style.Render(line))
	}
	return strings.Join(lines, "\n")
}

var upcards = []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

func chartHeader(label string) string {
	cols := []string{fmt.Sprintf("%-6s", label)}
	for _, up := range upcards {
		name := fmt.Sprintf("%d", up)
		if up == 11 {
			name = "A"
		}
		cols = append(cols, fmt.Sprintf("%3s", name))
	}
	return HeaderStyle.Render(strings.Join(cols, ""))
}

func chartRow(label string, kind strategy.HandType, total int, r rules.Rules) string {
	cells := []string{fmt.Sprintf("%-6s", label)}
	for _, up := range upcards {
		code := strategy.Code(kind, total, up, r)
		style, ok := codeStyles[code]
		if !ok {
			style = lipgloss.NewStyle()
		}
		cells = append(cells, style.Render(fmt.Sprintf("%3s", code)))
	}
	return strings.Join(cells, "")
}

// RenderChart prints the basic strategy chart for r.
func RenderChart(r rules.Rules) string {
	var b strings.Builder
	b.WriteString(HandInfoStyle.Render("Basic strategy, " + r.String()))
	b.WriteString("\n\n")

	b.WriteString(chartHeader("Hard"))
	b.WriteString("\n")
	for total := 8; total <= 17; total++ {
		b.WriteString(chartRow(fmt.Sprintf("%d", total), strategy.Hard, total, r))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(chartHeader("Soft"))
	b.WriteString("\n")
	for total := 13; total <= 20; total++ {
		b.WriteString(chartRow(fmt.Sprintf("A,%d", total-11), strategy.Soft, total, r))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(chartHeader("Pair"))
	b.WriteString("\n")
	for v := 2; v <= 11; v++ {
		label := fmt.Sprintf("%d,%d", v, v)
		switch v {
		case 10:
			label = "T,T"
		case 11:
			label = "A,A"
		}
		b.WriteString(chartRow(label, strategy.Pair, v, r))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("H hit  S stand  D double/hit  Ds double/stand  Rh surrender/hit  Rs surrender/stand  P split  Ph split with DAS  N no split"))
	return b.String()
}

// RenderDeviations lists every deviation with its index.
func RenderDeviations(r rules.Rules) string {
	var b strings.Builder
	section := ""
	for i, d := range deviation.All() {
		name := "Illustrious 18"
		switch {
		case d.Insurance:
			name = "Insurance"
		case d.Surrender:
			name = "Surrender"
		}
		if name != section {
			if section != "" {
				b.WriteString("\n")
			}
			section = name
			b.WriteString(HeaderStyle.Render(" " + name + " "))
			b.WriteString("\n")
		}
		line := fmt.Sprintf("%3d  %s", i, d)
		if d.Surrender && !r.Surrender {
			line = InfoStyle.Render(line + " (surrender not offered)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderTargetShoe describes a constructed shoe.
func RenderTargetShoe(ts *scenario.TargetShoe) string {
	how := "bucket construction"
	if ts.Simulated {
		how = "forward simulation"
	}
	return strings.Join([]string{
		HandInfoStyle.Render(fmt.Sprintf("TC %+.1f (%s)", ts.TrueCount, ts.Method)),
		fmt.Sprintf("Running count %+d", ts.RunningCount),
		fmt.Sprintf("%d cards remaining (%.1f decks), %d discarded",
			ts.Shoe.Len(), count.DecksRemaining(ts.Shoe.Len(), count.Perfect), ts.Discarded),
		InfoStyle.Render("Built by " + how),
	}, "\n")
}

// RenderDrillItem prints one drill scenario, with the answer when asked.
func RenderDrillItem(item drill.Item, answers bool) string {
	var b strings.Builder
	b.WriteString(HandInfoStyle.Render(fmt.Sprintf("#%d", item.N)))
	b.WriteString("\n")
	b.WriteString(RenderTable(item.State, item.Answer.TrueCount, true))
	b.WriteString("\n")
	if answers {
		b.WriteString(ActionsStyle.Render(fmt.Sprintf("Answer: %s", item.Answer.Expected)))
		b.WriteString(" ")
		b.WriteString(InfoStyle.Render(item.Answer.Explain()))
		b.WriteString("\n")
	}
	return b.String()
}
