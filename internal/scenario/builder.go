// Package scenario constructs practice shoes: a remaining shoe that lands on
// a requested true count, optionally arranged so that a seat starts in a
// specific deviation situation.
package scenario

import (
	"errors"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"
)

// ErrConstructionFailed is returned when every attempt is exhausted. No
// partial shoe is ever returned with it.
var ErrConstructionFailed = errors.New("scenario construction failed")

const (
	// Forward simulation shuffles at most this many shoes.
	simulationAttempts = 100
	// Bucket construction tries at most this many target sizes.
	bucketAttempts = 50
	// Deviation scenarios rebuild from scratch at most this many times.
	deviationAttempts = 50
	// Perfect-mode simulation abandons a shoe once it is this far past the
	// target.
	overshootMargin = 4.0

	defaultTolerance = 0.25
)

// Builder constructs shoes. A Builder is not safe for concurrent use since
// it draws from a single *rand.Rand.
type Builder struct {
	rng       *rand.Rand
	tolerance float64
	logger    *log.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithTolerance sets the accepted |TC - target| for the perfect method.
func WithTolerance(tol float64) Option {
	return func(b *Builder) {
		if tol > 0 {
			b.tolerance = tol
		}
	}
}

// WithLogger sets the logger used for attempt tracing.
func WithLogger(logger *log.Logger) Option {
	return func(b *Builder) {
		b.logger = logger.WithPrefix("scenario")
	}
}

// NewBuilder creates a builder. The RNG is required so constructions are
// reproducible from a seed.
func NewBuilder(rng *rand.Rand, opts ...Option) *Builder {
	if rng == nil {
		panic("rng is required for scenario construction")
	}
	b := &Builder{
		rng:       rng,
		tolerance: defaultTolerance,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}
