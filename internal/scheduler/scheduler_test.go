package scheduler

import (
	"errors"
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestCard() CardState {
	return NewCardState(DefaultConfig(), t0)
}

func exponentialCard(interval, ease float64, reps int, lastReview time.Time) CardState {
	last := lastReview
	return CardState{
		Phase:          Exponential,
		Interval:       interval,
		EaseFactor:     ease,
		Repetitions:    reps,
		NextReviewDate: lastReview.Add(durationDays(interval)),
		LastReviewDate: &last,
	}
}

func easeEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func mustReview(t *testing.T, s CardState, r Response, now time.Time) Result {
	t.Helper()
	res, err := ProcessReview(s, r, DefaultConfig(), now)
	if err != nil {
		t.Fatalf("ProcessReview(%v) error: %v", r, err)
	}
	return res
}

func TestNewCardState(t *testing.T) {
	c := newTestCard()
	if c.Phase != Learning {
		t.Errorf("Phase = %v, want Learning", c.Phase)
	}
	if c.LearningStep != 0 {
		t.Errorf("LearningStep = %d, want 0", c.LearningStep)
	}
	if c.EaseFactor != 2.5 {
		t.Errorf("EaseFactor = %v, want 2.5", c.EaseFactor)
	}
	if !c.NextReviewDate.Equal(t0) {
		t.Errorf("NextReviewDate = %v, want %v (immediately due)", c.NextReviewDate, t0)
	}
	if c.LastReviewDate != nil {
		t.Errorf("LastReviewDate = %v, want nil", c.LastReviewDate)
	}
}

func TestProcessReviewRejectsUnknownResponse(t *testing.T) {
	_, err := ProcessReview(newTestCard(), Response(0), DefaultConfig(), t0)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
	_, err = ProcessReview(newTestCard(), Response(9), DefaultConfig(), t0)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestProcessReviewDoesNotMutateInput(t *testing.T) {
	c := newTestCard()
	before := c
	mustReview(t, c, Easy, t0)
	if c != before {
		t.Errorf("input state mutated: %+v != %+v", c, before)
	}
}

func TestLearningForgotRestartsLadder(t *testing.T) {
	c := newTestCard()
	c.LearningStep = 2

	res := mustReview(t, c, Forgot, t0)
	if res.State.Phase != Learning {
		t.Errorf("Phase = %v, want Learning", res.State.Phase)
	}
	if res.State.LearningStep != 0 {
		t.Errorf("LearningStep = %d, want 0", res.State.LearningStep)
	}
	if res.IntervalDays != 0.5 {
		t.Errorf("IntervalDays = %v, want 0.5", res.IntervalDays)
	}
}

func TestLearningPartialRepeatsHalfStep(t *testing.T) {
	c := newTestCard()
	c.LearningStep = 1 // 1-day step

	res := mustReview(t, c, Partial, t0)
	if res.State.LearningStep != 1 {
		t.Errorf("LearningStep = %d, want 1 (unchanged)", res.State.LearningStep)
	}
	if res.IntervalDays != 0.5 {
		t.Errorf("IntervalDays = %v, want 0.5 (half of the 1-day step)", res.IntervalDays)
	}
}

func TestLearningEffortAdvancesStep(t *testing.T) {
	res := mustReview(t, newTestCard(), Effort, t0)
	if res.State.Phase != Learning {
		t.Errorf("Phase = %v, want Learning", res.State.Phase)
	}
	if res.State.LearningStep != 1 {
		t.Errorf("LearningStep = %d, want 1", res.State.LearningStep)
	}
	if res.IntervalDays != 1 {
		t.Errorf("IntervalDays = %v, want 1", res.IntervalDays)
	}
	wantDue := t0.Add(24 * time.Hour)
	if !res.NextReviewDate.Equal(wantDue) {
		t.Errorf("NextReviewDate = %v, want %v", res.NextReviewDate, wantDue)
	}
}

func TestLearningEffortOnLastStepGraduates(t *testing.T) {
	c := newTestCard()
	c.LearningStep = 2

	res := mustReview(t, c, Effort, t0)
	if res.State.Phase != Exponential {
		t.Errorf("Phase = %v, want Exponential", res.State.Phase)
	}
	if res.State.Interval != 1 {
		t.Errorf("Interval = %v, want 1", res.State.Interval)
	}
	if !easeEq(res.State.EaseFactor, 2.5) {
		t.Errorf("EaseFactor = %v, want 2.5", res.State.EaseFactor)
	}
	if res.State.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1", res.State.Repetitions)
	}
}

func TestLearningEasyGraduatesFromAnyStep(t *testing.T) {
	for step := 0; step < 3; step++ {
		c := newTestCard()
		c.LearningStep = step

		res := mustReview(t, c, Easy, t0)
		if res.State.Phase != Exponential {
			t.Errorf("step %d: Phase = %v, want Exponential", step, res.State.Phase)
		}
		if !easeEq(res.State.EaseFactor, 2.65) {
			t.Errorf("step %d: EaseFactor = %v, want 2.65", step, res.State.EaseFactor)
		}
		if res.IntervalDays != 1 {
			t.Errorf("step %d: IntervalDays = %v, want 1", step, res.IntervalDays)
		}
	}
}

func TestExponentialEffortMultipliesByEase(t *testing.T) {
	// Reviewed exactly on time: no overdue credit.
	c := exponentialCard(10, 2.5, 3, t0.AddDate(0, 0, -10))

	res := mustReview(t, c, Effort, t0)
	if res.IntervalDays != 25 {
		t.Errorf("IntervalDays = %v, want 25 (10 * 2.5)", res.IntervalDays)
	}
	if !easeEq(res.State.EaseFactor, 2.5) {
		t.Errorf("EaseFactor = %v, want 2.5 (unchanged)", res.State.EaseFactor)
	}
	if res.State.Repetitions != 4 {
		t.Errorf("Repetitions = %d, want 4", res.State.Repetitions)
	}
}

func TestExponentialPartialLowersEase(t *testing.T) {
	c := exponentialCard(10, 2.5, 3, t0.AddDate(0, 0, -10))

	res := mustReview(t, c, Partial, t0)
	if !easeEq(res.State.EaseFactor, 2.35) {
		t.Errorf("EaseFactor = %v, want 2.35", res.State.EaseFactor)
	}
	// round(10 * 2.35) with half away from zero.
	if res.IntervalDays != 24 {
		t.Errorf("IntervalDays = %v, want 24", res.IntervalDays)
	}
}

func TestExponentialEasyAppliesBonus(t *testing.T) {
	c := exponentialCard(10, 2.5, 3, t0.AddDate(0, 0, -10))

	res := mustReview(t, c, Easy, t0)
	if !easeEq(res.State.EaseFactor, 2.65) {
		t.Errorf("EaseFactor = %v, want 2.65", res.State.EaseFactor)
	}
	// round(10 * 2.65 * 1.3) = round(34.45) = 34
	if res.IntervalDays != 34 {
		t.Errorf("IntervalDays = %v, want 34", res.IntervalDays)
	}
}

func TestExponentialEasyBeatsEffort(t *testing.T) {
	c := exponentialCard(10, 2.5, 3, t0.AddDate(0, 0, -10))

	effort := mustReview(t, c, Effort, t0)
	easy := mustReview(t, c, Easy, t0)
	if easy.IntervalDays <= effort.IntervalDays {
		t.Errorf("easy interval %v should exceed effort interval %v",
			easy.IntervalDays, effort.IntervalDays)
	}
}

func TestExponentialLateReviewEarnsCredit(t *testing.T) {
	// 4 days overdue on a 10-day interval.
	c := exponentialCard(10, 2.5, 3, t0.AddDate(0, 0, -14))

	res := mustReview(t, c, Effort, t0)
	// daysLate 4, effort divider 2: round((10 + 2) * 2.5) = 30
	if res.IntervalDays != 30 {
		t.Errorf("IntervalDays = %v, want 30", res.IntervalDays)
	}

	// Easy divides the lateness least, partial the most.
	easy := mustReview(t, c, Easy, t0)
	partial := mustReview(t, c, Partial, t0)
	// easy: round((10 + 4) * 2.65 * 1.3) = round(48.23) = 48
	if easy.IntervalDays != 48 {
		t.Errorf("easy IntervalDays = %v, want 48", easy.IntervalDays)
	}
	// partial: round((10 + 1) * 2.35) = round(25.85) = 26
	if partial.IntervalDays != 26 {
		t.Errorf("partial IntervalDays = %v, want 26", partial.IntervalDays)
	}
}

func TestExponentialForgotEntersRelearning(t *testing.T) {
	c := exponentialCard(10, 2.5, 3, t0.AddDate(0, 0, -10))

	res := mustReview(t, c, Forgot, t0)
	if res.State.Phase != Relearning {
		t.Errorf("Phase = %v, want Relearning", res.State.Phase)
	}
	if !easeEq(res.State.EaseFactor, 2.3) {
		t.Errorf("EaseFactor = %v, want 2.3", res.State.EaseFactor)
	}
	if res.State.LearningStep != 0 {
		t.Errorf("LearningStep = %d, want 0", res.State.LearningStep)
	}
	if res.IntervalDays != 0.5 {
		t.Errorf("IntervalDays = %v, want 0.5 (first relearning step)", res.IntervalDays)
	}
	// Pre-lapse interval survives the lapse.
	if res.State.Interval != 10 {
		t.Errorf("Interval = %v, want 10 (preserved)", res.State.Interval)
	}
}

func TestForgotNeverStaysExponential(t *testing.T) {
	for _, interval := range []float64{1, 5, 50, 365} {
		c := exponentialCard(interval, 2.5, 3, t0.AddDate(0, 0, -int(interval)))
		res := mustReview(t, c, Forgot, t0)
		if res.State.Phase == Exponential {
			t.Errorf("interval %v: forgot left card in exponential phase", interval)
		}
	}
}

func TestRelearningRecoveryResumesPreservedInterval(t *testing.T) {
	lapsed := mustReview(t, exponentialCard(10, 2.5, 3, t0.AddDate(0, 0, -10)), Forgot, t0)

	// Walk the relearning ladder with effort: step 0 -> step 1 -> graduate.
	later := t0.Add(12 * time.Hour)
	step1 := mustReview(t, lapsed.State, Effort, later)
	if step1.State.Phase != Relearning {
		t.Fatalf("Phase = %v, want Relearning", step1.State.Phase)
	}
	if step1.IntervalDays != 2 {
		t.Errorf("IntervalDays = %v, want 2 (second relearning step)", step1.IntervalDays)
	}

	later = later.Add(48 * time.Hour)
	recovered := mustReview(t, step1.State, Effort, later)
	if recovered.State.Phase != Exponential {
		t.Errorf("Phase = %v, want Exponential", recovered.State.Phase)
	}
	if recovered.IntervalDays != 10 {
		t.Errorf("IntervalDays = %v, want 10 (the pre-lapse interval)", recovered.IntervalDays)
	}
}

func TestRelearningEasyRecoveryAppliesBonus(t *testing.T) {
	lapsed := mustReview(t, exponentialCard(10, 2.5, 3, t0.AddDate(0, 0, -10)), Forgot, t0)

	later := t0.Add(12 * time.Hour)
	recovered := mustReview(t, lapsed.State, Easy, later)
	if recovered.State.Phase != Exponential {
		t.Errorf("Phase = %v, want Exponential", recovered.State.Phase)
	}
	// ease 2.3 + 0.15, interval 10 * 1.3
	if !easeEq(recovered.State.EaseFactor, 2.45) {
		t.Errorf("EaseFactor = %v, want 2.45", recovered.State.EaseFactor)
	}
	if recovered.IntervalDays != 13 {
		t.Errorf("IntervalDays = %v, want 13", recovered.IntervalDays)
	}
}

func TestEaseNeverDropsBelowMinimum(t *testing.T) {
	c := exponentialCard(10, 1.3, 3, t0.AddDate(0, 0, -10))

	partial := mustReview(t, c, Partial, t0)
	if !easeEq(partial.State.EaseFactor, 1.3) {
		t.Errorf("partial EaseFactor = %v, want 1.3 (floor)", partial.State.EaseFactor)
	}

	c.EaseFactor = 1.35
	forgot := mustReview(t, c, Forgot, t0)
	if !easeEq(forgot.State.EaseFactor, 1.3) {
		t.Errorf("forgot EaseFactor = %v, want 1.3 (floor)", forgot.State.EaseFactor)
	}

	// Repeated failure cycles must not escape the floor.
	state := c
	for i := 0; i < 20; i++ {
		res := mustReview(t, state, Forgot, t0.AddDate(0, 0, i))
		state = res.State
		if state.EaseFactor < 1.3-1e-9 {
			t.Fatalf("cycle %d: EaseFactor = %v below floor", i, state.EaseFactor)
		}
	}
}

func TestIntervalAtLeastOneDayInExponential(t *testing.T) {
	// Minimum ease on a tiny interval still yields at least 1 day.
	c := exponentialCard(0.5, 1.3, 1, t0.AddDate(0, 0, -1))
	res := mustReview(t, c, Partial, t0)
	if res.IntervalDays < 1 {
		t.Errorf("IntervalDays = %v, want >= 1", res.IntervalDays)
	}
	if res.IntervalDays != math.Trunc(res.IntervalDays) {
		t.Errorf("IntervalDays = %v, want a whole number of days", res.IntervalDays)
	}
}

func TestReviewStampsLastReviewDate(t *testing.T) {
	res := mustReview(t, newTestCard(), Effort, t0)
	if res.State.LastReviewDate == nil || !res.State.LastReviewDate.Equal(t0) {
		t.Errorf("LastReviewDate = %v, want %v", res.State.LastReviewDate, t0)
	}
}

func TestDueCards(t *testing.T) {
	overdue := CardState{NextReviewDate: t0.Add(-time.Hour)}
	exact := CardState{NextReviewDate: t0}
	future := CardState{NextReviewDate: t0.Add(time.Hour)}

	due := DueCards([]CardState{future, overdue, exact}, t0)
	if len(due) != 2 {
		t.Fatalf("len(due) = %d, want 2", len(due))
	}
	// Input order preserved.
	if !due[0].NextReviewDate.Equal(overdue.NextReviewDate) {
		t.Errorf("due[0] = %v, want the overdue card first", due[0].NextReviewDate)
	}
	if !due[1].NextReviewDate.Equal(exact.NextReviewDate) {
		t.Errorf("due[1] = %v, want the exactly-due card second", due[1].NextReviewDate)
	}
}

func TestParseResponse(t *testing.T) {
	cases := map[string]Response{
		"forgot":  Forgot,
		"partial": Partial,
		"effort":  Effort,
		"easy":    Easy,
	}
	for s, want := range cases {
		got, err := ParseResponse(s)
		if err != nil {
			t.Errorf("ParseResponse(%q) error: %v", s, err)
		}
		if got != want {
			t.Errorf("ParseResponse(%q) = %v, want %v", s, got, want)
		}
	}

	if _, err := ParseResponse("great"); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("ParseResponse(\"great\") err = %v, want ErrInvalidResponse", err)
	}
}
