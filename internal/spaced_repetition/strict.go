package spaced_repetition

import (
	"errors"
	"fmt"
	"time"
)

// Grade is the learner's self-assessment of a review, from 1 to 5
type Grade int

const (
	// Did not know the answer
	GradeFail Grade = 1
	// Answered with a lot of doubt
	GradeUncertain Grade = 2
	// Answered correctly but with effort
	GradeAdequate Grade = 3
	// Answered without problems
	GradeConfident Grade = 4
	// Answered instantly
	GradeMastered Grade = 5
)

// Valid reports whether the grade is within 1-5
func (g Grade) Valid() bool {
	return g >= GradeFail && g <= GradeMastered
}

// String returns a short label for the grade
func (g Grade) String() string {
	switch g {
	case GradeFail:
		return "Fail"
	case GradeUncertain:
		return "Uncertain"
	case GradeAdequate:
		return "Adequate"
	case GradeConfident:
		return "Confident"
	case GradeMastered:
		return "Mastered"
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// InvalidGradeError is returned for grades outside 1-5
type InvalidGradeError struct {
	Grade int
}

func (e *InvalidGradeError) Error() string {
	return fmt.Sprintf("invalid grade %d: must be between 1 and 5", e.Grade)
}

// InvalidStateError is returned for a negative consecutive-success count
type InvalidStateError struct {
	ConsecutiveSuccesses int
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid review state: consecutive successes %d is negative", e.ConsecutiveSuccesses)
}

// ErrNoStreakIntervals is returned when a curve without streak intervals
// schedules a confident answer
var ErrNoStreakIntervals = errors.New("strict curve has no streak intervals")

// Interval is the outcome of scheduling a single review
type Interval struct {
	DelayMinutes         int
	ConsecutiveSuccesses int
}

// Delay returns the interval as a duration
func (i Interval) Delay() time.Duration {
	return time.Duration(i.DelayMinutes) * time.Minute
}

// StrictCurve implements a strict forgetting curve: a failure always sends the
// card back to a short interval and long intervals are only reached after
// several consecutive confident answers.
type StrictCurve struct {
	// Delay after a failed answer, in minutes
	FailInterval int
	// Delay after an uncertain answer, in minutes
	UncertainInterval int
	// Delay after an adequate answer, in minutes
	AdequateInterval int
	// Delays for confident answers indexed by streak-1; the last one is the cap.
	// Must not be empty.
	StreakIntervals []int
}

// NewStrictCurve creates a curve with the default intervals
func NewStrictCurve() *StrictCurve {
	return &StrictCurve{
		FailInterval:      10,   // 10 minutes
		UncertainInterval: 720,  // 12 hours
		AdequateInterval:  1440, // 24 hours
		StreakIntervals: []int{
			1440,  // 1 in a row -> 24 hours
			4320,  // 2 in a row -> 3 days
			10080, // 3 in a row -> 7 days
			20160, // 4+ in a row -> 14 days
		},
	}
}

// Schedule computes the next review delay and the new streak for a grade
func (c *StrictCurve) Schedule(grade Grade, consecutiveSuccesses int) (Interval, error) {
	if !grade.Valid() {
		return Interval{}, &InvalidGradeError{Grade: int(grade)}
	}
	if consecutiveSuccesses < 0 {
		return Interval{}, &InvalidStateError{ConsecutiveSuccesses: consecutiveSuccesses}
	}

	switch grade {
	case GradeFail:
		return Interval{DelayMinutes: c.FailInterval, ConsecutiveSuccesses: 0}, nil
	case GradeUncertain:
		// No credit for a weak answer, but the streak is kept
		return Interval{DelayMinutes: c.UncertainInterval, ConsecutiveSuccesses: consecutiveSuccesses}, nil
	case GradeAdequate:
		return Interval{DelayMinutes: c.AdequateInterval, ConsecutiveSuccesses: consecutiveSuccesses}, nil
	}

	if len(c.StreakIntervals) == 0 {
		return Interval{}, ErrNoStreakIntervals
	}

	streak := consecutiveSuccesses + 1
	tier := streak - 1
	if tier >= len(c.StreakIntervals) {
		tier = len(c.StreakIntervals) - 1
	}

	return Interval{DelayMinutes: c.StreakIntervals[tier], ConsecutiveSuccesses: streak}, nil
}

// Schedule applies the default strict curve
func Schedule(grade Grade, consecutiveSuccesses int) (Interval, error) {
	return defaultCurve.Schedule(grade, consecutiveSuccesses)
}

var defaultCurve = NewStrictCurve()
