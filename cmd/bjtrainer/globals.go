package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/bjtrainer/internal/config"
	"github.com/lox/bjtrainer/internal/journal"
	"github.com/lox/bjtrainer/internal/randutil"
	"github.com/lox/bjtrainer/internal/scenario"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config   string `help:"Config file (defaults to $BJTRAINER_CONFIG, then bjtrainer.hcl)" type:"path"`
	Seed     *int64 `help:"Random seed, overriding the config"`
	LogLevel string `default:"warn" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
	NoColor  bool   `help:"Disable colour output"`
}

// settings resolves the config file, .env and environment overrides, and
// the seed flag.
func (g *Globals) settings() (config.Settings, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return config.Settings{}, err
	}
	path := config.Path(g.Config, os.Getenv)
	s, err := config.Load(path)
	if err != nil {
		return config.Settings{}, fmt.Errorf("config %s: %w", path, err)
	}
	if s, err = s.ApplyEnv(os.Getenv); err != nil {
		return config.Settings{}, err
	}
	if g.Seed != nil {
		s.Seed = *g.Seed
	}
	if s.Seed == 0 {
		s.Seed = time.Now().UnixNano()
	}
	if err := s.Validate(); err != nil {
		return config.Settings{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

// logger builds the root logger writing to w.
func (g *Globals) logger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}), nil
}

func builder(s config.Settings, logger *log.Logger) *scenario.Builder {
	return scenario.NewBuilder(randutil.Derive(s.Seed, 1),
		scenario.WithTolerance(s.Rules.Tolerance),
		scenario.WithLogger(logger))
}

func openJournal(ctx context.Context, s config.Settings, logger *log.Logger) (*journal.Journal, error) {
	if s.Journal == "" {
		return nil, fmt.Errorf("no journal configured; set trainer.journal or %s", config.EnvJournal)
	}
	return journal.Open(ctx, s.Journal, journal.WithLogger(logger))
}

// signalContext is cancelled on interrupt signals.
func signalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal, stopping", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
