package trainer

import (
	"fmt"

	"github.com/lox/bjtrainer/internal/strategy"
)

const actionCount = int(strategy.DeclineInsurance) + 1

// Stats tracks decision accuracy for a session. It is a plain value so undo
// can restore it along with the table.
type Stats struct {
	Decisions int
	Correct   int

	DeviationSpots   int
	DeviationCorrect int

	InsuranceSpots   int
	InsuranceCorrect int

	Rounds int

	// Misses counts wrong answers by the action that was expected.
	Misses [actionCount]int
}

// Add incorporates a graded decision.
func (s *Stats) Add(d Decision) {
	s.Decisions++
	if d.Correct {
		s.Correct++
	} else if int(d.Expected) < actionCount {
		s.Misses[d.Expected]++
	}

	if d.Insurance {
		s.InsuranceSpots++
		if d.Correct {
			s.InsuranceCorrect++
		}
	}
	if d.IsDeviationSpot() {
		s.DeviationSpots++
		if d.Correct {
			s.DeviationCorrect++
		}
	}
}

// Accuracy returns the fraction of correct decisions.
func (s Stats) Accuracy() float64 {
	return ratio(s.Correct, s.Decisions)
}

// DeviationAccuracy returns the fraction of deviation spots played correctly.
func (s Stats) DeviationAccuracy() float64 {
	return ratio(s.DeviationCorrect, s.DeviationSpots)
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// Validate checks that the counters agree with each other.
func (s Stats) Validate() error {
	if s.Correct > s.Decisions {
		return fmt.Errorf("correct (%d) exceeds decisions (%d)", s.Correct, s.Decisions)
	}
	if s.DeviationCorrect > s.DeviationSpots || s.InsuranceCorrect > s.InsuranceSpots {
		return fmt.Errorf("spot counters inconsistent: deviation %d/%d, insurance %d/%d",
			s.DeviationCorrect, s.DeviationSpots, s.InsuranceCorrect, s.InsuranceSpots)
	}
	misses := 0
	for _, m := range s.Misses {
		misses += m
	}
	if misses != s.Decisions-s.Correct {
		return fmt.Errorf("misses (%d) do not match wrong decisions (%d)", misses, s.Decisions-s.Correct)
	}
	return nil
}

// String summarises the session.
func (s Stats) String() string {
	return fmt.Sprintf("%d/%d correct (%.0f%%), deviations %d/%d, insurance %d/%d, %d rounds",
		s.Correct, s.Decisions, 100*s.Accuracy(),
		s.DeviationCorrect, s.DeviationSpots,
		s.InsuranceCorrect, s.InsuranceSpots,
		s.Rounds)
}
