package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/bjtrainer/internal/journal"
	"github.com/lox/bjtrainer/internal/randutil"
	"github.com/lox/bjtrainer/internal/round"
	"github.com/lox/bjtrainer/internal/sequencer"
	"github.com/lox/bjtrainer/internal/snapshot"
	"github.com/lox/bjtrainer/internal/trainer"
	"github.com/lox/bjtrainer/internal/tui"
)

type PlayCmd struct {
	Fresh   bool   `help:"Ignore a saved table and start a new shoe"`
	LogFile string `help:"Write logs to this file while the table is on screen" type:"path"`
}

func (c *PlayCmd) Run(g *Globals) error {
	settings, err := g.settings()
	if err != nil {
		return err
	}

	var w io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	logger, err := g.logger(w)
	if err != nil {
		return err
	}

	ctx := context.Background()
	engine := round.NewEngine(settings.Rules, round.WithLogger(logger))
	opts := []trainer.Option{trainer.WithLogger(logger)}
	if settings.DealerDelay > 0 {
		opts = append(opts, trainer.WithPacedDealer())
	}

	if settings.Snapshot != "" && !c.Fresh {
		st, err := snapshot.Load(settings.Snapshot)
		switch {
		case err == nil:
			opts = append(opts, trainer.WithState(st))
			logger.Info("Resumed saved table", "path", settings.Snapshot, "phase", st.Phase)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("%w (use --fresh to start over)", err)
		}
	}

	var sessionLog *journal.SessionLog
	if settings.Journal != "" {
		j, err := journal.Open(ctx, settings.Journal, journal.WithLogger(logger))
		if err != nil {
			return err
		}
		defer j.Close()
		if sessionLog, err = j.StartSession(ctx, settings.Rules, settings.Seed); err != nil {
			return err
		}
		opts = append(opts, trainer.WithRecorder(sessionLog))
	}

	sess := trainer.NewSession(engine, randutil.New(settings.Seed),
		settings.Seats, settings.Bet, settings.Bankroll, opts...)

	model := tui.New(tui.Config{
		Session:      sess,
		Builder:      builder(settings, logger),
		Sequencer:    sequencer.New(quartz.NewReal(), sequencer.WithLogger(logger)),
		DealerDelay:  settings.DealerDelay,
		ShowCount:    settings.ShowCount,
		SnapshotPath: settings.Snapshot,
		Logger:       logger,
	})
	if err := tui.Run(model); err != nil {
		return fmt.Errorf("table: %w", err)
	}

	fmt.Println(sess.Stats().String())
	if sessionLog != nil {
		printSummary(ctx, sessionLog, log.Default())
	}
	return nil
}

func printSummary(ctx context.Context, sl *journal.SessionLog, logger *log.Logger) {
	sum, err := sl.Summary(ctx)
	if err != nil {
		logger.Warn("Could not summarise session", "error", err)
		return
	}
	fmt.Println(renderSummary(sum))
}
