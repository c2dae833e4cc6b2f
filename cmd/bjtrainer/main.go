package main

import (
	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version    kong.VersionFlag `short:"v" help:"Show version"`
	Play       PlayCmd          `cmd:"" default:"1" help:"Practise at an interactive table"`
	Chart      ChartCmd         `cmd:"" help:"Print the basic strategy chart for the configured rules"`
	Deviations DeviationsCmd    `cmd:"" help:"List the count-based deviations"`
	Shoe       ShoeCmd          `cmd:"" help:"Construct a shoe at a target true count"`
	Drill      DrillCmd         `cmd:"" help:"Print practice scenarios for deviations"`
	History    HistoryCmd       `cmd:"" help:"Summarise journaled sessions"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bjtrainer"),
		kong.Description("Blackjack basic strategy and card counting trainer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	if cli.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
