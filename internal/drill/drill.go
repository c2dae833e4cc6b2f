// Package drill generates batches of deviation practice scenarios. Each
// scenario is built from its own generator derived from the drill seed, so a
// drill is reproducible regardless of how many workers build it.
package drill

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/lox/bjtrainer/internal/deviation"
	"github.com/lox/bjtrainer/internal/randutil"
	"github.com/lox/bjtrainer/internal/round"
	"github.com/lox/bjtrainer/internal/rules"
	"github.com/lox/bjtrainer/internal/scenario"
	"github.com/lox/bjtrainer/internal/trainer"
)

// Config holds configuration for a drill
type Config struct {
	Count int
	Seats int
	Seed  int64
	Rules rules.Rules
	// Workers bounds parallel construction; 0 uses GOMAXPROCS.
	Workers int
	// Deviations restricts the drill to these indexes into deviation.All.
	Deviations []int
	Logger     *log.Logger
}

// Item is one generated scenario with its graded answer.
type Item struct {
	N        int
	Scenario *scenario.DeviationScenario
	// State is the table dealt and waiting on the scenario's decision.
	State  round.State
	Answer trainer.Decision
}

// Drill builds scenario batches.
type Drill struct {
	config Config
	engine *round.Engine
	pool   []int
}

// New validates the configuration and creates a drill.
func New(config Config) (*Drill, error) {
	if config.Count < 1 {
		return nil, fmt.Errorf("count must be positive, got %d", config.Count)
	}
	if config.Seats < 1 || config.Seats > round.MaxSeats {
		return nil, fmt.Errorf("seats must be between 1 and %d, got %d", round.MaxSeats, config.Seats)
	}
	if err := config.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}

	pool, err := eligible(config.Deviations, config.Rules)
	if err != nil {
		return nil, err
	}
	return &Drill{
		config: config,
		engine: round.NewEngine(config.Rules),
		pool:   pool,
	}, nil
}

// eligible resolves the deviation indexes to draw from. Surrender
// deviations are left out of a game without surrender.
func eligible(requested []int, r rules.Rules) ([]int, error) {
	all := deviation.All()
	if len(requested) == 0 {
		for i := range all {
			requested = append(requested, i)
		}
	}
	var pool []int
	for _, i := range requested {
		d, ok := deviation.Get(i)
		if !ok {
			return nil, fmt.Errorf("no deviation %d", i)
		}
		if d.Surrender && !r.Surrender {
			continue
		}
		pool = append(pool, i)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("no deviations available under %s", r)
	}
	return pool, nil
}

// Run builds the batch in parallel and returns it in order.
func (d *Drill) Run(ctx context.Context) ([]Item, error) {
	items := make([]Item, d.config.Count)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.config.Workers)
	for n := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := d.build(n)
			if err != nil {
				return fmt.Errorf("scenario %d: %w", n+1, err)
			}
			items[n] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.config.Logger.Debug("Built drill", "count", len(items), "workers", d.config.Workers, "seed", d.config.Seed)
	return items, nil
}

func (d *Drill) build(n int) (Item, error) {
	rng := randutil.Derive(d.config.Seed, n)
	index := d.pool[rng.IntN(len(d.pool))]

	b := scenario.NewBuilder(rng,
		scenario.WithTolerance(d.config.Rules.Tolerance),
		scenario.WithLogger(d.config.Logger))
	sc, err := b.ForDeviation(index, d.config.Rules.Decks, d.config.Rules.CountMethod, d.config.Seats)
	if err != nil {
		return Item{}, err
	}

	bet := decimal.NewFromInt(10)
	s, err := d.engine.Deal(sc.State(bet, decimal.NewFromInt(1000)))
	if err != nil {
		return Item{}, err
	}
	if s.Phase == round.Insurance && !sc.Deviation.Insurance {
		s = d.engine.Insure(s, false)
	}

	answer, err := trainer.Advise(d.engine, s)
	if err != nil {
		return Item{}, fmt.Errorf("%s: %w", sc.Deviation.Name, err)
	}
	return Item{N: n + 1, Scenario: sc, State: s, Answer: answer}, nil
}
