package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/bjtrainer/internal/drill"
	"github.com/lox/bjtrainer/internal/journal"
	"github.com/lox/bjtrainer/internal/tui"
)

type ChartCmd struct{}

func (c *ChartCmd) Run(g *Globals) error {
	settings, err := g.settings()
	if err != nil {
		return err
	}
	fmt.Println(tui.RenderChart(settings.Rules))
	return nil
}

type DeviationsCmd struct{}

func (c *DeviationsCmd) Run(g *Globals) error {
	settings, err := g.settings()
	if err != nil {
		return err
	}
	fmt.Println(tui.RenderDeviations(settings.Rules))
	return nil
}

type ShoeCmd struct {
	TC float64 `name:"tc" required:"" help:"Target true count"`
}

func (c *ShoeCmd) Run(g *Globals) error {
	settings, err := g.settings()
	if err != nil {
		return err
	}
	logger, err := g.logger(os.Stderr)
	if err != nil {
		return err
	}

	r := settings.Rules
	ts, err := builder(settings, logger).ForTargetTC(c.TC, r.Decks, r.CountMethod)
	if err != nil {
		return err
	}
	fmt.Println(tui.RenderTargetShoe(ts))
	return nil
}

type DrillCmd struct {
	Count      int   `default:"10" help:"Number of scenarios"`
	Answers    bool  `help:"Show the correct play after each scenario"`
	Workers    int   `default:"0" help:"Parallel builders (0 uses every CPU)"`
	Deviations []int `name:"deviation" help:"Restrict to these deviation indexes (see 'bjtrainer deviations')"`
}

func (c *DrillCmd) Run(g *Globals) error {
	settings, err := g.settings()
	if err != nil {
		return err
	}
	logger, err := g.logger(os.Stderr)
	if err != nil {
		return err
	}

	d, err := drill.New(drill.Config{
		Count:      c.Count,
		Seats:      settings.Seats,
		Seed:       settings.Seed,
		Rules:      settings.Rules,
		Workers:    c.Workers,
		Deviations: c.Deviations,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	items, err := d.Run(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Println(tui.RenderDrillItem(item, c.Answers))
	}
	logger.Info("Drill complete", "scenarios", len(items), "seed", settings.Seed)
	return nil
}

type HistoryCmd struct {
	Limit int `default:"10" help:"Number of recent sessions to show"`
}

func (c *HistoryCmd) Run(g *Globals) error {
	settings, err := g.settings()
	if err != nil {
		return err
	}
	logger, err := g.logger(os.Stderr)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	j, err := openJournal(ctx, settings, logger)
	if err != nil {
		return err
	}
	defer j.Close()

	sessions, err := j.Sessions(ctx, c.Limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println(tui.InfoStyle.Render("No sessions recorded yet."))
		return nil
	}
	for _, s := range sessions {
		sum, err := j.Summary(ctx, s.ID)
		if err != nil {
			return err
		}
		fmt.Println(renderSummary(sum))
		fmt.Println()
	}
	return nil
}

var summaryStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#626262")).
	Padding(0, 1)

func renderSummary(sum journal.Summary) string {
	var b strings.Builder
	b.WriteString(tui.HeaderStyle.Render(" " + sum.Session.StartedAt.Local().Format("2006-01-02 15:04") + " "))
	b.WriteString(" ")
	b.WriteString(tui.InfoStyle.Render(fmt.Sprintf("%s  seed %d", sum.Session.Rules, sum.Session.Seed)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Decisions  %s\n", tally(sum.Decisions))
	fmt.Fprintf(&b, "Deviations %s", tally(sum.Deviations))

	names := make([]string, 0, len(sum.ByDeviation))
	for name := range sum.ByDeviation {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(&b, "\n  %-16s %s", name, tally(sum.ByDeviation[name]))
	}
	return summaryStyle.Render(b.String())
}

func tally(t journal.Tally) string {
	if t.Spots == 0 {
		return tui.InfoStyle.Render("none")
	}
	style := tui.SuccessStyle
	if t.Accuracy() < 0.9 {
		style = tui.WarningStyle
	}
	return style.Render(fmt.Sprintf("%d/%d (%.0f%%)", t.Correct, t.Spots, 100*t.Accuracy()))
}
