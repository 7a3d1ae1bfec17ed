// Package scheduler implements the spaced-repetition state machine for
// repertoire entries: a three-phase SM-2 variant with fixed learning steps,
// exponential ease-driven growth, and a relearning ladder after lapses.
//
// The package is pure: ProcessReview is a function of its inputs plus the
// supplied clock value, performs no I/O, and never mutates its arguments.
// Callers persist the returned state.
package scheduler

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidResponse is returned when a review response is not one of the
// four recognized values. It is the only failure mode of this package.
var ErrInvalidResponse = errors.New("scheduler: invalid response")

// CardState is the scheduling view of one repertoire entry.
type CardState struct {
	Phase          Phase
	Interval       float64 // days; preserved across relearning
	EaseFactor     float64
	Repetitions    int
	LearningStep   int
	NextReviewDate time.Time
	LastReviewDate *time.Time // nil before the first review
}

// Config supplies every numeric tunable of the algorithm.
type Config struct {
	LearningStepsDays   []float64
	RelearningStepsDays []float64

	StartingEase float64
	MinimumEase  float64
	EasyBonus    float64 // interval multiplier for easy reviews

	ForgotEasePenalty  float64
	PartialEasePenalty float64
	EasyEaseBonus      float64

	// Lateness dividers scale down the overdue credit: partial divides
	// most, easy divides least.
	PartialLateDivider float64
	EffortLateDivider  float64
	EasyLateDivider    float64
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		LearningStepsDays:   []float64{0.5, 1, 3},
		RelearningStepsDays: []float64{0.5, 2},
		StartingEase:        2.5,
		MinimumEase:         1.3,
		EasyBonus:           1.3,
		ForgotEasePenalty:   0.20,
		PartialEasePenalty:  0.15,
		EasyEaseBonus:       0.15,
		PartialLateDivider:  4,
		EffortLateDivider:   2,
		EasyLateDivider:     1,
	}
}

// NewCardState returns the state assigned to a freshly ingested entry:
// immediately due, first learning step.
func NewCardState(cfg Config, now time.Time) CardState {
	return CardState{
		Phase:          Learning,
		Interval:       0,
		EaseFactor:     cfg.StartingEase,
		Repetitions:    0,
		LearningStep:   0,
		NextReviewDate: now,
	}
}

// Result is the outcome of one review.
type Result struct {
	State          CardState
	NextReviewDate time.Time
	IntervalDays   float64 // the scheduled wait, which in step phases differs from State.Interval
	Rationale      string
}

// ProcessReview applies one graded response to the card state and returns
// the new state, the next due date, and a human-readable rationale. The input
// state is not mutated.
func ProcessReview(state CardState, response Response, cfg Config, now time.Time) (Result, error) {
	if !response.IsValid() {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidResponse, int(response))
	}

	s := state
	var days float64
	var why string

	switch s.Phase {
	case Exponential:
		days, why = reviewExponential(&s, response, cfg, now)
	case Relearning:
		days, why = reviewSteps(&s, response, cfg, cfg.RelearningStepsDays, true)
	default:
		// Learning, including never-reviewed states with a zero phase.
		s.Phase = Learning
		days, why = reviewSteps(&s, response, cfg, cfg.LearningStepsDays, false)
	}

	last := now
	s.LastReviewDate = &last
	s.NextReviewDate = now.Add(durationDays(days))

	return Result{
		State:          s,
		NextReviewDate: s.NextReviewDate,
		IntervalDays:   days,
		Rationale:      why,
	}, nil
}

// DueCards returns the subset of cards due at the given time, preserving
// input order.
func DueCards(cards []CardState, now time.Time) []CardState {
	due := make([]CardState, 0, len(cards))
	for _, c := range cards {
		if Due(c.NextReviewDate, now) {
			due = append(due, c)
		}
	}
	return due
}

// Due reports whether a next-review timestamp has come up.
func Due(nextReview, now time.Time) bool {
	return !nextReview.After(now)
}

// reviewSteps handles the learning and relearning ladders, which share the
// same shape and differ only in their exit rules.
func reviewSteps(s *CardState, response Response, cfg Config, steps []float64, relearning bool) (float64, string) {
	if len(steps) == 0 {
		// No ladder configured: graduate on any successful response.
		if response == Forgot {
			return 1, "forgot with no steps configured: due again in 1 day"
		}
		return graduate(s, response, cfg, relearning)
	}

	step := s.LearningStep
	if step >= len(steps) {
		step = len(steps) - 1
	}

	switch response {
	case Forgot:
		s.LearningStep = 0
		return steps[0], fmt.Sprintf("forgot: restarting at the first %s step (%s)", ladderName(relearning), fmtDays(steps[0]))

	case Partial:
		half := steps[step] / 2
		return half, fmt.Sprintf("partial recall: repeating %s step %d at half interval (%s)", ladderName(relearning), step, fmtDays(half))

	case Effort:
		if step+1 >= len(steps) {
			return graduate(s, response, cfg, relearning)
		}
		s.LearningStep = step + 1
		return steps[step+1], fmt.Sprintf("good recall: advanced to %s step %d (%s)", ladderName(relearning), step+1, fmtDays(steps[step+1]))

	default: // Easy exits the ladder regardless of position.
		return graduate(s, response, cfg, relearning)
	}
}

// graduate moves a card from a step ladder into the exponential phase.
func graduate(s *CardState, response Response, cfg Config, relearning bool) (float64, string) {
	s.Phase = Exponential
	s.LearningStep = 0

	if !relearning {
		// Leaving learning: ease starts fresh, interval starts at 1 day.
		s.EaseFactor = cfg.StartingEase
		if response == Easy {
			s.EaseFactor = clampEase(cfg.StartingEase+cfg.EasyEaseBonus, cfg)
		}
		s.Interval = 1
		s.Repetitions = 1
		return 1, fmt.Sprintf("graduated from learning (%s): first exponential interval is 1 day", response)
	}

	// Leaving relearning: the pre-lapse interval was preserved.
	if response == Easy {
		s.EaseFactor = clampEase(s.EaseFactor+cfg.EasyEaseBonus, cfg)
		s.Interval = s.Interval * cfg.EasyBonus
	}
	if s.Interval < 1 {
		s.Interval = 1
	}
	s.Repetitions++
	return s.Interval, fmt.Sprintf("recovered from lapse (%s): resuming at %s", response, fmtDays(s.Interval))
}

// reviewExponential grows or resets a graduated card.
func reviewExponential(s *CardState, response Response, cfg Config, now time.Time) (float64, string) {
	if response == Forgot {
		s.Phase = Relearning
		s.LearningStep = 0
		s.EaseFactor = clampEase(s.EaseFactor-cfg.ForgotEasePenalty, cfg)
		first := 1.0
		if len(cfg.RelearningStepsDays) > 0 {
			first = cfg.RelearningStepsDays[0]
		}
		return first, fmt.Sprintf("forgot: ease lowered to %.2f, relearning starts in %s", s.EaseFactor, fmtDays(first))
	}

	prev := s.Interval

	// Reviewing an overdue card earns partial credit toward the next
	// interval, scaled down for weaker recall.
	var daysLate float64
	if s.LastReviewDate != nil {
		since := now.Sub(*s.LastReviewDate).Hours() / 24
		daysLate = math.Max(0, since-math.Floor(prev))
	}

	var factor, divider float64
	switch response {
	case Partial:
		s.EaseFactor = clampEase(s.EaseFactor-cfg.PartialEasePenalty, cfg)
		factor = s.EaseFactor
		divider = cfg.PartialLateDivider
	case Effort:
		factor = s.EaseFactor
		divider = cfg.EffortLateDivider
	default: // Easy
		s.EaseFactor = clampEase(s.EaseFactor+cfg.EasyEaseBonus, cfg)
		factor = s.EaseFactor * cfg.EasyBonus
		divider = cfg.EasyLateDivider
	}

	lateBonus := daysLate / divider
	next := math.Round(math.Max(1, (prev+lateBonus)*factor))
	s.Interval = next
	s.Repetitions++

	why := fmt.Sprintf("%s: interval %s -> %s (factor %.2f)", response, fmtDays(prev), fmtDays(next), factor)
	if lateBonus > 0 {
		why += fmt.Sprintf(", including credit for %.1f overdue days", daysLate)
	}
	return next, why
}

func ladderName(relearning bool) string {
	if relearning {
		return "relearning"
	}
	return "learning"
}

func clampEase(ease float64, cfg Config) float64 {
	return math.Max(ease, cfg.MinimumEase)
}

func durationDays(days float64) time.Duration {
	return time.Duration(days * 24 * float64(time.Hour))
}

func fmtDays(days float64) string {
	if days == math.Trunc(days) {
		return fmt.Sprintf("%dd", int(days))
	}
	return fmt.Sprintf("%.2gd", days)
}
