// FILE: internal/server/service/review.go
package service

import (
	"database/sql"
	"errors"
	"time"

	"repertoire/internal/core"
	"repertoire/internal/scheduler"
	"repertoire/internal/server/storage"
)

// ReviewOutcome is the summary returned after one review submission.
type ReviewOutcome struct {
	NextReviewDate time.Time
	IntervalDays   float64
	Rationale      string
}

// SubmitReview applies a graded response to one entry and persists the new
// scheduling state. The load-schedule-store sequence runs in one transaction.
func (s *Service) SubmitReview(userID, entryID string, response scheduler.Response, now time.Time) (*ReviewOutcome, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	var outcome *ReviewOutcome
	err := s.store.WithTx(func(tx *sql.Tx) error {
		entry, err := storage.GetOwnedEntry(tx, entryID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEntryNotFound
			}
			return err
		}
		if entry.OwnerUserID != userID {
			return ErrEntryForbidden
		}

		state, err := cardState(entry.EntryRecord)
		if err != nil {
			return err
		}

		result, err := scheduler.ProcessReview(state, response, s.cfg, now)
		if err != nil {
			return err
		}

		updated := entry.EntryRecord
		updated.Interval = result.State.Interval
		updated.EaseFactor = result.State.EaseFactor
		updated.Repetitions = result.State.Repetitions
		updated.Phase = result.State.Phase.String()
		updated.LearningStep = result.State.LearningStep
		updated.NextReview = result.State.NextReviewDate
		updated.LastReview = result.State.LastReviewDate
		if err := storage.UpdateEntrySRS(tx, updated); err != nil {
			return err
		}

		outcome = &ReviewOutcome{
			NextReviewDate: result.NextReviewDate,
			IntervalDays:   result.IntervalDays,
			Rationale:      result.Rationale,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// DueCards returns the entries of the user's repertoire due at the given
// time, in due-date order.
func (s *Service) DueCards(userID string, color core.Color, now time.Time) ([]storage.EntryRecord, error) {
	entries, err := s.RepertoireEntries(userID, color)
	if err != nil {
		return nil, err
	}

	due := make([]storage.EntryRecord, 0, len(entries))
	for _, e := range entries {
		if scheduler.Due(e.NextReview, now) {
			due = append(due, e)
		}
	}
	return due, nil
}

// RepertoireEntries returns every entry of the user's repertoire for one
// color. A user with no repertoire for that color gets an empty list.
func (s *Service) RepertoireEntries(userID string, color core.Color) ([]storage.EntryRecord, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	var entries []storage.EntryRecord
	err := s.store.WithTx(func(tx *sql.Tx) error {
		repertoireID, err := storage.GetRepertoire(tx, userID, string(color))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		entries, err = storage.EntriesForRepertoire(tx, repertoireID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// cardState converts an entry's persisted SRS columns to the scheduler view.
func cardState(e storage.EntryRecord) (scheduler.CardState, error) {
	phase, err := scheduler.ParsePhase(e.Phase)
	if err != nil {
		return scheduler.CardState{}, err
	}
	return scheduler.CardState{
		Phase:          phase,
		Interval:       e.Interval,
		EaseFactor:     e.EaseFactor,
		Repetitions:    e.Repetitions,
		LearningStep:   e.LearningStep,
		NextReviewDate: e.NextReview,
		LastReviewDate: e.LastReview,
	}, nil
}
