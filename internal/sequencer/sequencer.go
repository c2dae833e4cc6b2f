// Package sequencer runs paced presentation steps, such as revealing dealer
// cards one at a time, from a single loop that can be cancelled at any
// point. Game state never depends on it: a cancelled sequence only skips the
// remaining steps.
package sequencer

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Step is one timed action. Do runs after Delay has elapsed; returning
// false ends the sequence early.
type Step struct {
	Delay time.Duration
	Do    func() bool
}

// Sequencer executes steps against a clock.
type Sequencer struct {
	clock  quartz.Clock
	logger *log.Logger
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the sequencer logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Sequencer) {
		s.logger = logger.WithPrefix("sequencer")
	}
}

// New creates a sequencer. A nil clock uses real time.
func New(clock quartz.Clock, opts ...Option) *Sequencer {
	if clock == nil {
		clock = quartz.NewReal()
	}
	s := &Sequencer{
		clock:  clock,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes steps in order and returns the number that ran. It returns
// ctx.Err() if cancelled before the sequence finished.
func (s *Sequencer) Run(ctx context.Context, steps []Step) (int, error) {
	for i, step := range steps {
		if step.Delay > 0 {
			fired := make(chan struct{})
			timer := s.clock.AfterFunc(step.Delay, func() {
				close(fired)
			}, "sequencer", "step")

			select {
			case <-fired:
			case <-ctx.Done():
				timer.Stop()
				s.logger.Debug("Sequence cancelled", "ran", i, "pending", len(steps)-i)
				return i, ctx.Err()
			}
		} else if err := ctx.Err(); err != nil {
			return i, err
		}

		if !step.Do() {
			return i + 1, nil
		}
	}
	return len(steps), nil
}

// Repeat builds a sequence that calls do every interval until it returns
// false, at most limit times.
func Repeat(interval time.Duration, limit int, do func() bool) []Step {
	steps := make([]Step, limit)
	for i := range steps {
		steps[i] = Step{Delay: interval, Do: do}
	}
	return steps
}
